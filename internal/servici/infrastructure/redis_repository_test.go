package infrastructure

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	redisAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/redis/adapter"
)

func newRedisStore(t *testing.T) (*RedisPersistable, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redisAdapter.NewRedisClient(redisAdapter.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisPersistable(client, testLogger(t)), server
}

func TestRedisPersistableContract(t *testing.T) {
	store, _ := newRedisStore(t)
	require.NoError(t, SeedMissing(context.Background(), store, Seed))

	checkPersistableContract(t, store, true, rapid.String())
}

func TestRedisPersistableUsesNamespacedKeys(t *testing.T) {
	store, server := newRedisStore(t)

	require.NoError(t, store.Save(context.Background(), 42, "sol"))

	got, err := server.Get("servici:message:42")
	require.NoError(t, err)
	assert.Equal(t, "sol", got)
}

func TestRedisPersistableMediumFailure(t *testing.T) {
	store, server := newRedisStore(t)
	server.SetError("ERR medium unavailable")

	err := store.Save(context.Background(), 1, "x")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = store.Load(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
	assert.Equal(t, uint32(1), perr.ID)
}
