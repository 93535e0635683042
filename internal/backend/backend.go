// Package backend opens the slot store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/internal/cache"
	"github.com/learnhub/backend/internal/database"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/storage"
	"github.com/learnhub/backend/internal/storage/sqlite"
)

// Backend is an open slot store plus what the chosen backend offers beyond
// get/set/remove.
type Backend struct {
	Store storage.Store

	// Watch is nil when the backend cannot announce writes.
	Watch storage.Watchable

	// Limiter is set only for the Redis backend.
	Limiter middleware.RemoteLimiter

	close func() error
}

// Close releases the connection
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to cfg.Store.Backend. Postgres migrations run on open.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	log = log.With("backend", cfg.Store.Backend)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		s := storage.NewMemoryStore()
		return &Backend{Store: s, Watch: s}, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("opened sqlite store", "path", cfg.Store.SQLitePath)
		return &Backend{Store: s, Watch: s, close: s.Close}, nil

	case config.BackendRedis:
		r, err := cache.NewRedisClient(ctx, cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: r, Watch: r, Limiter: r, close: r.Close}, nil

	case config.BackendPostgres:
		db, err := database.NewPostgresDB(cfg.GetDSN())
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db.DB); err != nil {
			db.Close()
			return nil, err
		}
		s := database.NewSlotStore(db, log)
		return &Backend{Store: s, Watch: s, close: db.Close}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
