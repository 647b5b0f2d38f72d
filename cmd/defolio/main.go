// Command defolio runs the portfolio aggregation backend. It loads and
// validates configuration, wires the chain, cache, store, and notification
// dependencies, and serves the configured mode until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/calvinwei/defolio/internal/app"
	"github.com/calvinwei/defolio/internal/config"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "defolio: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Bootstrap at info level until the configured level is known.
	logger := newLogger("info")
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config %s: %w", configPath, err)
	}

	logger = newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("defolio starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", configPath),
	)

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// context.Canceled is the normal result of a signal-driven shutdown.
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("defolio stopped")
	return nil
}

// defaultConfigPath allows overriding the config location through the
// environment, matching the DEFOLIO_* overrides the loader applies to
// individual settings.
func defaultConfigPath() string {
	if p := os.Getenv("DEFOLIO_CONFIG"); p != "" {
		return p
	}
	return "config.toml"
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
