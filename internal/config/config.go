// Package config defines the top-level configuration for marketguard and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MARKETGUARD_* environment variables.
type Config struct {
	Feed        FeedConfig        `toml:"feed"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	S3          S3Config          `toml:"s3"`
	Liquidity   LiquidityConfig   `toml:"liquidity"`
	Correlation CorrelationConfig `toml:"correlation"`
	Archive     ArchiveConfig     `toml:"archive"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// FeedConfig selects and parameterizes the market-data source.
type FeedConfig struct {
	// Source selects the transport: "kafka" or "ws".
	Source string      `toml:"source"`
	Kafka  KafkaConfig `toml:"kafka"`
	WS     WSConfig    `toml:"ws"`
}

// KafkaConfig holds Kafka consumer parameters.
type KafkaConfig struct {
	Brokers   []string `toml:"brokers"`
	BookTopic string   `toml:"book_topic"`
	TickTopic string   `toml:"tick_topic"`
	GroupID   string   `toml:"group_id"`
	MinBytes  int      `toml:"min_bytes"`
	MaxBytes  int      `toml:"max_bytes"`
}

// WSConfig holds WebSocket gateway parameters.
type WSConfig struct {
	URL string `toml:"url"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
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

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// LiquidityConfig holds liquidity guard and toxicity sweep parameters.
type LiquidityConfig struct {
	SweepInterval duration `toml:"sweep_interval"`
	// Majors overrides the built-in major pair list when non-empty.
	Majors []string `toml:"majors"`
	// DefaultOrderSize is the notional used for the side-depth check on
	// incoming snapshots; 0 disables it.
	DefaultOrderSize float64 `toml:"default_order_size"`
}

// CorrelationConfig holds rolling-window correlation parameters.
type CorrelationConfig struct {
	// WindowSize is the per-symbol price history capacity.
	WindowSize int `toml:"window_size"`
	// Timeframe labels emitted edges, e.g. "24h".
	Timeframe string `toml:"timeframe"`
}

// ArchiveConfig holds cold-storage archival parameters.
type ArchiveConfig struct {
	Enabled       bool     `toml:"enabled"`
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
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

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Feed: FeedConfig{
			Source: "kafka",
			Kafka: KafkaConfig{
				Brokers:   []string{"localhost:9092"},
				BookTopic: "market.books",
				TickTopic: "market.ticks",
				GroupID:   "marketguard",
			},
			WS: WSConfig{
				URL: "ws://localhost:8080/stream",
			},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "marketguard",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "marketguard-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Liquidity: LiquidityConfig{
			SweepInterval:    duration{5 * time.Minute},
			DefaultOrderSize: 0,
		},
		Correlation: CorrelationConfig{
			WindowSize: 288,
			Timeframe:  "24h",
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 30,
			Interval:      duration{6 * time.Hour},
		},
		Notify: NotifyConfig{
			Events: []string{"toxicity"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"ingest":  true,
	"monitor": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validSources enumerates the accepted values for Feed.Source.
var validSources = map[string]bool{
	"kafka": true,
	"ws":    true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: ingest, monitor, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Feed
	if !validSources[strings.ToLower(c.Feed.Source)] {
		errs = append(errs, fmt.Sprintf("feed: unknown source %q (valid: kafka, ws)", c.Feed.Source))
	}
	if strings.ToLower(c.Feed.Source) == "kafka" {
		if len(c.Feed.Kafka.Brokers) == 0 {
			errs = append(errs, "feed: kafka.brokers must not be empty")
		}
		if c.Feed.Kafka.BookTopic == "" {
			errs = append(errs, "feed: kafka.book_topic must not be empty")
		}
		if c.Feed.Kafka.TickTopic == "" {
			errs = append(errs, "feed: kafka.tick_topic must not be empty")
		}
	}
	if strings.ToLower(c.Feed.Source) == "ws" && c.Feed.WS.URL == "" {
		errs = append(errs, "feed: ws.url must not be empty")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Postgres is only required outside ingest mode.
	if c.Mode != "ingest" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
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
	}

	// S3 is only required when archival is on.
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be positive")
		}
	}

	// Liquidity
	if c.Liquidity.SweepInterval.Duration <= 0 {
		errs = append(errs, "liquidity: sweep_interval must be positive")
	}
	if c.Liquidity.DefaultOrderSize < 0 {
		errs = append(errs, "liquidity: default_order_size must not be negative")
	}

	// Correlation
	if c.Correlation.WindowSize < 2 {
		errs = append(errs, "correlation: window_size must be >= 2")
	}
	if c.Correlation.Timeframe == "" {
		errs = append(errs, "correlation: timeframe must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
