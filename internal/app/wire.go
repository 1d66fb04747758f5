// Package app builds the stores shared by the server and the operator CLI
// from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"flightplan-service/internal/domain/repository"
	"flightplan-service/internal/infrastructure/cache"
	"flightplan-service/internal/infrastructure/config"
	"flightplan-service/internal/infrastructure/persistence"
	repo "flightplan-service/internal/interface/repository"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"
)

// Closer releases a resource opened during wiring.
type Closer func(ctx context.Context) error

// Closers runs in reverse order of registration.
type Closers []Closer

func (c *Closers) add(fn Closer) {
	*c = append(*c, fn)
}

// Close releases everything and joins the errors.
func (c Closers) Close(ctx context.Context) error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewFlightPlanStore opens the configured store and wraps it in the
// configured cache. The returned closers must be closed on shutdown even
// when an error is returned.
func NewFlightPlanStore(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Metrics) (repository.FlightPlanStore, Closers, error) {
	var closers Closers

	var store repository.FlightPlanStore
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("Using in-memory flight plan store; data is lost on exit")
		store = repo.NewMemoryFlightPlanRepository()

	case config.StoreMongo:
		log.Info("Connecting to MongoDB", "database", cfg.MongoDB, "collection", cfg.MongoCollection)
		client, err := persistence.NewMongoClient(ctx, persistence.MongoOptions{
			URI:         cfg.MongoURI,
			Username:    cfg.MongoUser,
			Password:    cfg.MongoPassword,
			MaxPoolSize: cfg.MongoMaxPool,
		})
		if err != nil {
			return nil, closers, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		closers.add(func(ctx context.Context) error {
			return client.Disconnect(ctx)
		})

		mongoStore := repo.NewMongoFlightPlanRepository(
			persistence.GetDatabase(client, cfg.MongoDB),
			cfg.MongoCollection,
			cfg.MongoOpTimeout,
			log,
			m,
		)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return nil, closers, err
		}
		store = mongoStore

	default:
		return nil, closers, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	var c cache.Cache
	switch cfg.CacheDriver {
	case config.CacheNone, "":
		return store, closers, nil
	case config.CacheMemory:
		c = cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			DefaultTTL: cfg.CacheTTL,
		})
		if err != nil {
			return nil, closers, err
		}
		c = rc
	default:
		return nil, closers, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
	closers.add(func(context.Context) error {
		return c.Close()
	})

	log.Info("Flight plan reads are cached", "driver", cfg.CacheDriver, "ttl", cfg.CacheTTL.String())
	return repo.NewCachedFlightPlanRepository(store, c, cfg.CacheTTL, log, m), closers, nil
}

// NewUserService checks credentials against Postgres when POSTGRES_DSN is
// set and against the static pair from config otherwise.
func NewUserService(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.UserService, Closers, error) {
	if cfg.PostgresURI == "" {
		log.Info("Using static API credentials", "username", cfg.AuthUsername)
		return repo.NewStaticUserRepository(cfg.AuthUsername, cfg.AuthPassword), nil, nil
	}

	users, closers, err := NewUserAdmin(ctx, cfg)
	if err != nil {
		return nil, closers, err
	}

	log.Info("Using Postgres users table for API credentials")
	return users, closers, nil
}

// NewUserAdmin opens the Postgres users table and migrates it.
func NewUserAdmin(ctx context.Context, cfg *config.Config) (*repo.GormUserRepository, Closers, error) {
	var closers Closers

	if cfg.PostgresURI == "" {
		return nil, closers, errors.New("POSTGRES_DSN is not set")
	}

	db, err := persistence.NewGormDB(cfg.PostgresURI)
	if err != nil {
		return nil, closers, err
	}
	if sqlDB, err := db.DB(); err == nil {
		closers.add(func(context.Context) error {
			return sqlDB.Close()
		})
	}

	users := repo.NewGormUserRepository(db)
	if err := users.Migrate(ctx); err != nil {
		return nil, closers, err
	}
	return users, closers, nil
}
