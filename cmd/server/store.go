package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/internal/config"
	pgInfra "github.com/fastygo/accountdesk/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/accountdesk/internal/infrastructure/redis"
	"github.com/fastygo/accountdesk/internal/services/lifecycle"
	"github.com/fastygo/accountdesk/repository"
	boltRepo "github.com/fastygo/accountdesk/repository/bolt"
	pgRepo "github.com/fastygo/accountdesk/repository/postgres"
	redisRepo "github.com/fastygo/accountdesk/repository/redis"
)

// storeBackend is the selected key-value store. purger is nil when the
// backend expires keys on its own.
type storeBackend struct {
	kv     repository.KeyValueStore
	purger repository.ExpiryPurger
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, manager *lifecycle.Manager) (storeBackend, error) {
	switch cfg.Store.Driver {
	case config.DriverRedis:
		client, err := redisInfra.NewClient(cfg.Redis, logger)
		if err != nil {
			return storeBackend{}, err
		}
		manager.Closer("redis", client.Close)
		return storeBackend{kv: redisRepo.NewKeyValueStore(client)}, nil

	case config.DriverBolt:
		store, err := boltRepo.Open(cfg.Bolt.Path, cfg.Bolt.Bucket)
		if err != nil {
			return storeBackend{}, err
		}
		manager.Closer("bolt", store.Close)
		logger.Info("opened bolt store", zap.String("path", cfg.Bolt.Path))
		return storeBackend{kv: store, purger: store}, nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return storeBackend{}, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return storeBackend{}, err
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, logger)
			return nil
		})
		kv := pgRepo.NewKeyValueStore(pool)
		purger, _ := kv.(repository.ExpiryPurger)
		return storeBackend{kv: kv, purger: purger}, nil
	}
	return storeBackend{}, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
