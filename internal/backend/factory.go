// Package backend assembles the long-lived application services from
// configuration: the SQLite store, the optional AMQP publisher, the practice
// service and the token service with its cache.
package backend

import (
	"context"
	"fmt"

	"lexdash/internal/amqp"
	"lexdash/internal/auth"
	"lexdash/internal/cache"
	applog "lexdash/internal/log"
	"lexdash/internal/ports"
	"lexdash/internal/services"
	"lexdash/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the assembled services and the function releasing them.
type BackendResult struct {
	Repo     *storage.SQLiteRepository
	Practice *services.PracticeService
	Tokens   *auth.TokenService
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger

	// connect is swapped in tests to avoid a live broker.
	connect func(url, exchange, queue string, logger *applog.Logger) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Default(applog.ComponentApp)
	}
	return &DefaultFactory{
		logger:  logger,
		connect: amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger.WithComponent(applog.ComponentStorage))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// A nil *amqp.Client must not leak into the interface.
	var publisher ports.EventPublisher
	if config.AMQPURL != "" {
		client, err := f.connect(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger.WithComponent(applog.ComponentAMQP))
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without record events",
				applog.FieldError, err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	practice := services.NewPracticeService(repo, publisher, services.Options{
		Location:      config.Location,
		Logger:        f.logger,
		RevenueMonths: config.RevenueMonths,
		UpcomingLimit: config.UpcomingLimit,
	})

	var (
		tokenCache cache.Cache[auth.CachedUser]
		manager    *cache.Manager
	)
	if config.TokenCacheSize > 0 {
		lru := cache.NewLRUCache[auth.CachedUser](config.TokenCacheSize, config.TokenCacheTTL)
		tokenCache = lru
		manager = cache.NewManager(f.logger)
		manager.Register(lru)
		manager.StartCleanup(config.TokenCacheTTL)
	}
	tokens := auth.NewTokenService(repo, tokenCache, config.TokenRevalidate)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil,
		"token_cache_size", config.TokenCacheSize)

	cleanup := func() error {
		if manager != nil {
			manager.Stop()
		}
		// Closes the publisher and the repository.
		return practice.Close()
	}

	return &BackendResult{
		Repo:     repo,
		Practice: practice,
		Tokens:   tokens,
		Cleanup:  cleanup,
	}, nil
}
