// Package config defines the top-level configuration for the defolio backend
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by DEFOLIO_* environment variables.
type Config struct {
	Chain     ChainConfig     `toml:"chain"`
	Moralis   MoralisConfig   `toml:"moralis"`
	ZeroEx    ZeroExConfig    `toml:"zeroex"`
	Llama     LlamaConfig     `toml:"llama"`
	Sheet     SheetConfig     `toml:"sheet"`
	Redis     RedisConfig     `toml:"redis"`
	Postgres  PostgresConfig  `toml:"postgres"`
	S3        S3Config        `toml:"s3"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ChainConfig holds JSON-RPC endpoints and call parameters. RPCURLs is keyed
// by decimal chain ID ("42161" -> Arbitrum endpoint).
type ChainConfig struct {
	DefaultChainID int64             `toml:"default_chain_id"`
	RPCURLs        map[string]string `toml:"rpc_urls"`
	CallTimeout    duration          `toml:"call_timeout"`
	MaxRetries     uint              `toml:"max_retries"`
}

// MoralisConfig holds credentials for the Moralis token/price API.
type MoralisConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ZeroExConfig holds credentials and parameters for the 0x swap-quote API.
type ZeroExConfig struct {
	APIKey        string   `toml:"api_key"`
	BaseURL       string   `toml:"base_url"`
	SlippagePct   float64  `toml:"slippage_pct"`
	QuoteDebounce duration `toml:"quote_debounce"`
}

// LlamaConfig holds the DefiLlama yields API endpoint.
type LlamaConfig struct {
	BaseURL string `toml:"base_url"`
}

// SheetConfig holds the URL of the external spreadsheet-backed cost-basis
// web service.
type SheetConfig struct {
	URL string `toml:"url"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	PriceTTL   duration `toml:"price_ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters for the snapshot
// store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// PortfolioConfig holds aggregation and poller parameters.
type PortfolioConfig struct {
	// WatchWallets are polled in the background for snapshots and alerts.
	WatchWallets []string `toml:"watch_wallets"`
	PollInterval duration `toml:"poll_interval"`

	// Dust thresholds are presentation-layer filters, applied by the
	// HTTP handlers rather than the merger.
	DustUSDDefi   float64 `toml:"dust_usd_defi"`
	DustUSDAssets float64 `toml:"dust_usd_assets"`

	// DefaultAPY is used when a protocol's external yield source fails.
	// DefaultAPYBySymbol overrides it per token; keys must match token
	// table symbols exactly ("USDC.e", not "USDCe").
	DefaultAPY         float64            `toml:"default_apy"`
	DefaultAPYBySymbol map[string]float64 `toml:"default_apy_by_symbol"`

	SnapshotRetentionDays int `toml:"snapshot_retention_days"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials and alert thresholds.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	MinHealthFactor   float64  `toml:"min_health_factor"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			DefaultChainID: 42161,
			RPCURLs: map[string]string{
				"42161": "https://arb1.arbitrum.io/rpc",
			},
			CallTimeout: duration{10 * time.Second},
			MaxRetries:  3,
		},
		Moralis: MoralisConfig{
			BaseURL: "https://deep-index.moralis.io/api/v2.2",
		},
		ZeroEx: ZeroExConfig{
			BaseURL:       "https://api.0x.org",
			SlippagePct:   1.0,
			QuoteDebounce: duration{500 * time.Millisecond},
		},
		Llama: LlamaConfig{
			BaseURL: "https://yields.llama.fi",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
			PriceTTL:   duration{60 * time.Second},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "defolio",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "defolio-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Portfolio: PortfolioConfig{
			PollInterval:  duration{5 * time.Minute},
			DustUSDDefi:   0.1,
			DustUSDAssets: 1.0,
			DefaultAPY:    2.0,
			DefaultAPYBySymbol: map[string]float64{
				"USDC":   2.5,
				"USDC.e": 2.3,
			},
			SnapshotRetentionDays: 90,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   60,
			RateWindow:  duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events:          []string{"health_low", "snapshot_failed"},
			MinHealthFactor: 1.1,
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"poll":   true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// needsPostgres returns true for modes that record snapshots.
func needsPostgres(mode string) bool {
	return mode == "poll" || mode == "full"
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, poll, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Chain
	if c.Chain.DefaultChainID <= 0 {
		errs = append(errs, "chain: default_chain_id must be positive")
	}
	if len(c.Chain.RPCURLs) == 0 {
		errs = append(errs, "chain: at least one rpc_urls entry is required")
	}
	for id, u := range c.Chain.RPCURLs {
		if strings.TrimSpace(u) == "" {
			errs = append(errs, fmt.Sprintf("chain: rpc_urls[%s] must not be empty", id))
		}
	}
	if c.Chain.CallTimeout.Duration <= 0 {
		errs = append(errs, "chain: call_timeout must be > 0")
	}

	// ZeroEx
	if c.ZeroEx.BaseURL == "" {
		errs = append(errs, "zeroex: base_url must not be empty")
	}
	if c.ZeroEx.SlippagePct < 0 || c.ZeroEx.SlippagePct > 100 {
		errs = append(errs, fmt.Sprintf("zeroex: slippage_pct must be 0-100, got %g", c.ZeroEx.SlippagePct))
	}

	// Llama
	if c.Llama.BaseURL == "" {
		errs = append(errs, "llama: base_url must not be empty")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Postgres is only required for modes that record snapshots.
	if needsPostgres(c.Mode) && strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Portfolio
	if needsPostgres(c.Mode) && len(c.Portfolio.WatchWallets) == 0 {
		errs = append(errs, "portfolio: watch_wallets must not be empty for mode "+c.Mode)
	}
	if c.Portfolio.PollInterval.Duration <= 0 {
		errs = append(errs, "portfolio: poll_interval must be > 0")
	}
	if c.Portfolio.DustUSDDefi < 0 || c.Portfolio.DustUSDAssets < 0 {
		errs = append(errs, "portfolio: dust thresholds must be >= 0")
	}
	if c.Portfolio.DefaultAPY < 0 {
		errs = append(errs, "portfolio: default_apy must be >= 0")
	}
	if c.Portfolio.SnapshotRetentionDays < 1 {
		errs = append(errs, "portfolio: snapshot_retention_days must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	// Notify
	if c.Notify.MinHealthFactor < 0 {
		errs = append(errs, "notify: min_health_factor must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RPCURL returns the configured endpoint for a chain ID, or "" when the
// chain has no entry.
func (c *ChainConfig) RPCURL(chainID int64) string {
	return c.RPCURLs[fmt.Sprintf("%d", chainID)]
}
