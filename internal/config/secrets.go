package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Moralis.APIKey)
	redact(&out.ZeroEx.APIKey)
	redact(&out.Redis.Password)
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Server.APIKey)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices and maps so callers cannot mutate the original through
	// the redacted copy.
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = append([]string(nil), cfg.Notify.Events...)
	}
	if cfg.Portfolio.WatchWallets != nil {
		out.Portfolio.WatchWallets = append([]string(nil), cfg.Portfolio.WatchWallets...)
	}
	if cfg.Chain.RPCURLs != nil {
		out.Chain.RPCURLs = make(map[string]string, len(cfg.Chain.RPCURLs))
		for k, v := range cfg.Chain.RPCURLs {
			out.Chain.RPCURLs[k] = v
		}
	}
	if cfg.Portfolio.DefaultAPYBySymbol != nil {
		out.Portfolio.DefaultAPYBySymbol = make(map[string]float64, len(cfg.Portfolio.DefaultAPYBySymbol))
		for k, v := range cfg.Portfolio.DefaultAPYBySymbol {
			out.Portfolio.DefaultAPYBySymbol[k] = v
		}
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
