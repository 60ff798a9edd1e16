package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
)

const redisKeyPrefix = "servici:message:"

// RedisPersistable guarda cada mensagem numa chave string; SET e GET de uma
// chave são atômicos no Redis.
type RedisPersistable struct {
	client redis.UniversalClient
	logger pkgApp.AppLogger
}

func NewRedisPersistable(client redis.UniversalClient, logger pkgApp.AppLogger) *RedisPersistable {
	return &RedisPersistable{
		client: client,
		logger: logger,
	}
}

func redisKey(id uint32) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, id)
}

func (r *RedisPersistable) Save(ctx context.Context, id uint32, value string) error {
	if err := r.client.Set(ctx, redisKey(id), value, 0).Err(); err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to save message", err, map[string]interface{}{"id": id})
		return domain.NewPersistenceError("save", id, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "message saved", map[string]interface{}{"id": id})
	return nil
}

func (r *RedisPersistable) Load(ctx context.Context, id uint32) (string, error) {
	value, err := r.client.Get(ctx, redisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		pkgApp.LogDebug(ctx, r.logger, "message not found", map[string]interface{}{"id": id})
		return domain.NotFound, nil
	}
	if err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to load message", err, map[string]interface{}{"id": id})
		return "", domain.NewPersistenceError("load", id, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "message loaded", map[string]interface{}{"id": id})
	return value, nil
}
