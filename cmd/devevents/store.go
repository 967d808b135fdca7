package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"devevents/config"
	"devevents/internal/cache"
	"devevents/internal/domain"
	"devevents/internal/repository/memory"
	"devevents/internal/repository/mongodb"
	"devevents/internal/repository/postgres"
	"devevents/internal/seed"
	"devevents/internal/services"
)

// store bundles the repositories of the configured backend with its lifecycle.
type store struct {
	events   domain.EventRepository
	bookings domain.BookingRepository
	ping     func(ctx context.Context) error
	closers  []func() error

	// set only for DB_DRIVER=postgres
	db *sql.DB
}

func (s *store) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *store) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openStore connects to the backend named by cfg.DBDriver. When prepare is
// set, schema migrations (postgres) or index creation (mongo) run first, and
// the memory store is filled with the built-in catalogue.
// With REDIS_ADDR set, event reads go through the Redis cache.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, prepare bool) (*store, error) {
	s := &store{}
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if prepare {
			if err := postgres.Migrate(db); err != nil {
				db.Close()
				return nil, err
			}
		}
		s.db = db
		s.events = postgres.NewEventRepository(db)
		s.bookings = postgres.NewBookingRepository(db)
		s.ping = db.PingContext
		s.closers = append(s.closers, db.Close)
	case config.DriverMongo:
		ms, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if prepare {
			if err := ms.EnsureIndexes(ctx); err != nil {
				ms.Close()
				return nil, err
			}
		}
		s.events = ms.Events()
		s.bookings = ms.Bookings()
		s.ping = ms.Ping
		s.closers = append(s.closers, ms.Close)
	case config.DriverMemory:
		ms := memory.New()
		s.events = ms.Events()
		s.bookings = ms.Bookings()
		s.ping = ms.Ping
		s.closers = append(s.closers, ms.Close)
		if prepare {
			// nothing outlives the process, so load the built-in catalogue here
			if err := seedDefault(ctx, cfg, s.events, logger); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	logger.Info("store opened", "driver", cfg.DBDriver)

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// reads still work without the cache
			logger.Warn("event cache disabled", "redis_addr", cfg.RedisAddr, "err", err)
		} else {
			s.events = cache.NewEventRepository(s.events, rdb, cfg.EventCacheTTL, logger)
			s.closers = append(s.closers, rdb.Close)
			logger.Info("event cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.EventCacheTTL)
		}
	}
	return s, nil
}

func seedDefault(ctx context.Context, cfg *config.Config, events domain.EventRepository, logger *slog.Logger) error {
	catalogue, err := seed.Default()
	if err != nil {
		return err
	}
	res, err := seed.Run(ctx, services.NewEventService(events, cfg.QueryTimeout), catalogue, logger)
	if err != nil {
		return fmt.Errorf("seed memory store: %w", err)
	}
	logger.Info("memory store seeded", "created", res.Created)
	return nil
}
