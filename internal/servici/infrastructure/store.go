package infrastructure

import (
	"context"
	"fmt"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	"github.com/mateusmacedo/go-servici/pkg/infrastructure/config"
	redisAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/redis/adapter"
)

// SeedMissing grava as entradas de seed cujas chaves ainda não existem no store.
// Não é atômico em relação a escritores concorrentes; use apenas na subida.
func SeedMissing(ctx context.Context, store domain.Persistable, seed map[uint32]string) error {
	for id, value := range seed {
		current, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		if current != domain.NotFound {
			continue
		}
		if err := store.Save(ctx, id, value); err != nil {
			return err
		}
	}
	return nil
}

// NewPersistable monta o store escolhido em cfg.StoreDriver. O closer devolvido
// libera conexões e nunca é nil.
func NewPersistable(ctx context.Context, cfg config.Config, logger pkgApp.AppLogger) (domain.Persistable, func() error, error) {
	noop := func() error { return nil }

	var (
		store  domain.Persistable
		closer = noop
	)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return NewInMemoryPersistable(logger), noop, nil
	case config.DriverRedis:
		client := redisAdapter.NewRedisClient(redisAdapter.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		store, closer = NewRedisPersistable(client, logger), client.Close
	case config.DriverPostgres:
		gormStore, err := OpenGormPersistable(cfg.PostgresDSN, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		store, closer = gormStore, gormStore.Close
	case config.DriverSQLite:
		sqliteStore, err := OpenSQLitePersistable(cfg.SQLitePath, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		store, closer = sqliteStore, sqliteStore.Close
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if err := SeedMissing(ctx, store, Seed); err != nil {
		_ = closer()
		return nil, noop, fmt.Errorf("seed store: %w", err)
	}

	pkgApp.LogInfo(ctx, logger, "store ready", map[string]interface{}{"driver": cfg.StoreDriver})
	return store, closer, nil
}
