// Package db selects and opens the configured ports.KVStore backend.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/safad/worklog/internal/core/ports"
	"github.com/safad/worklog/internal/infrastructure/config"
	"github.com/safad/worklog/internal/infrastructure/db/file"
	"github.com/safad/worklog/internal/infrastructure/db/memory"
	"github.com/safad/worklog/internal/infrastructure/db/mongo"
	"github.com/safad/worklog/internal/infrastructure/db/postgres"
	"github.com/safad/worklog/internal/infrastructure/db/redis"
	"github.com/safad/worklog/internal/infrastructure/db/sqlite"
)

// Open connects to the backend named by cfg.Store.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.KVStore, error) {
	var (
		store ports.KVStore
		err   error
	)

	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store, err = file.NewStore(cfg.DataDir)
	case config.StoreRedis:
		store, err = redis.Open(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix)
	case config.StoreMongo:
		store, err = mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	case config.StorePostgres:
		store, err = postgres.Open(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	case config.StoreSQLite:
		store, err = sqlite.Open(ctx, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	log.Debug().Str("store", cfg.Store).Msg("store opened")
	return store, nil
}
