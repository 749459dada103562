package store

import (
	"context"
	"fmt"

	"github.com/diogoX451/devicedb/internal/config"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/store/memory"
	"github.com/diogoX451/devicedb/internal/store/redis"
	"github.com/diogoX451/devicedb/internal/store/relational"
)

// Open escolhe o store pelo storage.driver e devolve a porta do Core.
// Os drivers relacionais aplicam as migrations antes de devolver.
func Open(ctx context.Context, cfg *config.Config) (ports.DeviceRepository, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory.New(), nil

	case config.StoragePostgres, config.StorageSQLite:
		db, err := relational.Open(relational.Config{
			Driver: cfg.Storage.Driver,
			DSN:    cfg.Storage.DSN,
		})
		if err != nil {
			return nil, err
		}
		repo := relational.New(db)
		if err := relational.Migrate(ctx, db); err != nil {
			repo.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return repo, nil

	case config.StorageRedis:
		return redis.New(redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
