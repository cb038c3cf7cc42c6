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
// built-in defaults, applies MARKETGUARD_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
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

// applyEnvOverrides reads well-known MARKETGUARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Feed ──
	setStr(&cfg.Feed.Source, "MARKETGUARD_FEED_SOURCE")
	setStringSlice(&cfg.Feed.Kafka.Brokers, "MARKETGUARD_FEED_KAFKA_BROKERS")
	setStr(&cfg.Feed.Kafka.BookTopic, "MARKETGUARD_FEED_KAFKA_BOOK_TOPIC")
	setStr(&cfg.Feed.Kafka.TickTopic, "MARKETGUARD_FEED_KAFKA_TICK_TOPIC")
	setStr(&cfg.Feed.Kafka.GroupID, "MARKETGUARD_FEED_KAFKA_GROUP_ID")
	setStr(&cfg.Feed.WS.URL, "MARKETGUARD_FEED_WS_URL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MARKETGUARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETGUARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETGUARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETGUARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETGUARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETGUARD_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MARKETGUARD_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "MARKETGUARD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MARKETGUARD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MARKETGUARD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MARKETGUARD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MARKETGUARD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MARKETGUARD_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MARKETGUARD_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MARKETGUARD_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MARKETGUARD_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "MARKETGUARD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MARKETGUARD_S3_REGION")
	setStr(&cfg.S3.Bucket, "MARKETGUARD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MARKETGUARD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MARKETGUARD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "MARKETGUARD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "MARKETGUARD_S3_FORCE_PATH_STYLE")

	// ── Liquidity ──
	setDuration(&cfg.Liquidity.SweepInterval, "MARKETGUARD_LIQUIDITY_SWEEP_INTERVAL")
	setStringSlice(&cfg.Liquidity.Majors, "MARKETGUARD_LIQUIDITY_MAJORS")
	setFloat64(&cfg.Liquidity.DefaultOrderSize, "MARKETGUARD_LIQUIDITY_DEFAULT_ORDER_SIZE")

	// ── Correlation ──
	setInt(&cfg.Correlation.WindowSize, "MARKETGUARD_CORRELATION_WINDOW_SIZE")
	setStr(&cfg.Correlation.Timeframe, "MARKETGUARD_CORRELATION_TIMEFRAME")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "MARKETGUARD_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "MARKETGUARD_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "MARKETGUARD_ARCHIVE_INTERVAL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MARKETGUARD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETGUARD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETGUARD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MARKETGUARD_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "MARKETGUARD_MODE")
	setStr(&cfg.LogLevel, "MARKETGUARD_LOG_LEVEL")
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
