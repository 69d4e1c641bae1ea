package backend

import (
	"fmt"
	"time"

	"lexdash/internal/config"
)

// Config holds what the factory needs to assemble the application.
type Config struct {
	SQLiteDBPath string

	// AMQP is optional; an empty URL disables record events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Location      *time.Location
	RevenueMonths int
	UpcomingLimit int

	// A zero TokenCacheSize disables the token cache.
	TokenCacheSize int
	TokenCacheTTL  time.Duration

	// TokenRevalidate bounds how long a cached token is trusted.
	TokenRevalidate time.Duration
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	loc, err := appConfig.Location()
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone in config: %w", err)
	}

	return Config{
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPQueue:      appConfig.AMQPQueue,
		Location:       loc,
		RevenueMonths:  appConfig.RevenueMonths,
		UpcomingLimit:  appConfig.UpcomingLimit,
		TokenCacheSize: appConfig.TokenCacheSize,
		TokenCacheTTL:  appConfig.TokenCacheTTL,

		TokenRevalidate: appConfig.TokenRevalidate,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when an AMQP URL is set")
	}
	if c.TokenCacheSize < 0 {
		return fmt.Errorf("token cache size must not be negative")
	}
	if c.TokenCacheSize > 0 && c.TokenCacheTTL <= 0 {
		return fmt.Errorf("token cache TTL must be positive when the cache is enabled")
	}
	return nil
}
