package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/calvinwei/defolio/internal/blob/s3"
	"github.com/calvinwei/defolio/internal/cache/redis"
	"github.com/calvinwei/defolio/internal/chain"
	"github.com/calvinwei/defolio/internal/config"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/notify"
	"github.com/calvinwei/defolio/internal/platform/llama"
	"github.com/calvinwei/defolio/internal/platform/moralis"
	"github.com/calvinwei/defolio/internal/platform/sheets"
	"github.com/calvinwei/defolio/internal/platform/zeroex"
	"github.com/calvinwei/defolio/internal/protocol"
	"github.com/calvinwei/defolio/internal/protocol/aave"
	"github.com/calvinwei/defolio/internal/protocol/compound"
	"github.com/calvinwei/defolio/internal/protocol/dolomite"
	"github.com/calvinwei/defolio/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Chain access
	ChainClient *chain.Client
	Registry    *protocol.Registry

	// Caches
	PriceCache  domain.PriceCache
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus

	// External APIs
	Moralis   *moralis.Client
	ZeroEx    *zeroex.Client
	CostBasis domain.CostBasisStore // nil when the sheet URL is unset

	// Persistence (only for modes that record snapshots)
	SnapshotStore domain.SnapshotStore
	Archiver      domain.Archiver
	Blobs         domain.BlobReader // nil when S3 is disabled

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- JSON-RPC chain client and protocol readers ---
	chainClient, err := chain.New(chain.Config{
		RPCURLs:     cfg.Chain.RPCURLs,
		CallTimeout: cfg.Chain.CallTimeout.Duration,
		MaxRetries:  cfg.Chain.MaxRetries,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: chain: %w", err)
	}
	closers = append(closers, chainClient.Close)
	deps.ChainClient = chainClient

	yields := llama.New(cfg.Llama.BaseURL)
	deps.Registry = protocol.NewRegistry(
		aave.NewReader(chainClient, logger),
		compound.NewReader(chainClient, logger),
		dolomite.NewReader(chainClient, yields, cfg.Portfolio.DefaultAPY, cfg.Portfolio.DefaultAPYBySymbol, logger),
	)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	priceTTL := cfg.Redis.PriceTTL.Duration
	if priceTTL <= 0 {
		priceTTL = time.Minute
	}
	deps.PriceCache = redis.NewPriceCache(redisClient, priceTTL)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- External APIs ---
	deps.Moralis = moralis.New(cfg.Moralis.BaseURL, cfg.Moralis.APIKey)
	deps.ZeroEx = zeroex.New(cfg.ZeroEx.BaseURL, cfg.ZeroEx.APIKey, cfg.ZeroEx.SlippagePct)
	if cfg.Sheet.URL != "" {
		deps.CostBasis = sheets.New(cfg.Sheet.URL)
	}

	// --- PostgreSQL (only for modes that record snapshots) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		store := postgres.NewSnapshotStore(pgClient.Pool())
		deps.SnapshotStore = store

		// --- S3 archival (optional) ---
		if cfg.S3.Enabled {
			s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
				Endpoint:       cfg.S3.Endpoint,
				Region:         cfg.S3.Region,
				Bucket:         cfg.S3.Bucket,
				AccessKey:      cfg.S3.AccessKey,
				SecretKey:      cfg.S3.SecretKey,
				UseSSL:         cfg.S3.UseSSL,
				ForcePathStyle: cfg.S3.ForcePathStyle,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: s3: %w", err)
			}
			blobs := s3blob.NewReader(s3Client)
			deps.Blobs = blobs
			deps.Archiver = s3blob.NewSnapshotArchiver(s3blob.NewWriter(s3Client), blobs, store)
		}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// needsPostgres returns true for modes that record snapshots.
func needsPostgres(mode string) bool {
	return mode == "poll" || mode == "full"
}
