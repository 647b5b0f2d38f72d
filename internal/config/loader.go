package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DEFOLIO_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DEFOLIO_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Chain ──
	setInt64(&cfg.Chain.DefaultChainID, "DEFOLIO_CHAIN_DEFAULT_CHAIN_ID")
	if v := os.Getenv("DEFOLIO_CHAIN_RPC_URL"); v != "" {
		// Single-endpoint override for the default chain.
		if cfg.Chain.RPCURLs == nil {
			cfg.Chain.RPCURLs = map[string]string{}
		}
		cfg.Chain.RPCURLs[strconv.FormatInt(cfg.Chain.DefaultChainID, 10)] = v
	}
	setDuration(&cfg.Chain.CallTimeout, "DEFOLIO_CHAIN_CALL_TIMEOUT")
	setUint(&cfg.Chain.MaxRetries, "DEFOLIO_CHAIN_MAX_RETRIES")

	// ── Moralis ──
	setStr(&cfg.Moralis.APIKey, "DEFOLIO_MORALIS_API_KEY")
	setStr(&cfg.Moralis.BaseURL, "DEFOLIO_MORALIS_BASE_URL")

	// ── 0x ──
	setStr(&cfg.ZeroEx.APIKey, "DEFOLIO_ZEROEX_API_KEY")
	setStr(&cfg.ZeroEx.BaseURL, "DEFOLIO_ZEROEX_BASE_URL")
	setFloat64(&cfg.ZeroEx.SlippagePct, "DEFOLIO_ZEROEX_SLIPPAGE_PCT")
	setDuration(&cfg.ZeroEx.QuoteDebounce, "DEFOLIO_ZEROEX_QUOTE_DEBOUNCE")

	// ── Llama ──
	setStr(&cfg.Llama.BaseURL, "DEFOLIO_LLAMA_BASE_URL")

	// ── Sheet ──
	setStr(&cfg.Sheet.URL, "DEFOLIO_SHEET_URL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "DEFOLIO_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "DEFOLIO_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DEFOLIO_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "DEFOLIO_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "DEFOLIO_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "DEFOLIO_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.PriceTTL, "DEFOLIO_REDIS_PRICE_TTL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "DEFOLIO_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "DEFOLIO_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "DEFOLIO_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "DEFOLIO_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "DEFOLIO_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "DEFOLIO_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "DEFOLIO_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "DEFOLIO_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "DEFOLIO_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "DEFOLIO_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "DEFOLIO_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "DEFOLIO_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "DEFOLIO_S3_REGION")
	setStr(&cfg.S3.Bucket, "DEFOLIO_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "DEFOLIO_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "DEFOLIO_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "DEFOLIO_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "DEFOLIO_S3_FORCE_PATH_STYLE")

	// ── Portfolio ──
	setStringSlice(&cfg.Portfolio.WatchWallets, "DEFOLIO_PORTFOLIO_WATCH_WALLETS")
	setDuration(&cfg.Portfolio.PollInterval, "DEFOLIO_PORTFOLIO_POLL_INTERVAL")
	setFloat64(&cfg.Portfolio.DustUSDDefi, "DEFOLIO_PORTFOLIO_DUST_USD_DEFI")
	setFloat64(&cfg.Portfolio.DustUSDAssets, "DEFOLIO_PORTFOLIO_DUST_USD_ASSETS")
	setFloat64(&cfg.Portfolio.DefaultAPY, "DEFOLIO_PORTFOLIO_DEFAULT_APY")
	setInt(&cfg.Portfolio.SnapshotRetentionDays, "DEFOLIO_PORTFOLIO_SNAPSHOT_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "DEFOLIO_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "DEFOLIO_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "DEFOLIO_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "DEFOLIO_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "DEFOLIO_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "DEFOLIO_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "DEFOLIO_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "DEFOLIO_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "DEFOLIO_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "DEFOLIO_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.MinHealthFactor, "DEFOLIO_NOTIFY_MIN_HEALTH_FACTOR")

	// ── Top-level ──
	setStr(&cfg.Mode, "DEFOLIO_MODE")
	setStr(&cfg.LogLevel, "DEFOLIO_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setUint(dst *uint, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			*dst = uint(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
