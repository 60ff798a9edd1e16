package infrastructure

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
)

func TestInMemoryPersistableContract(t *testing.T) {
	checkPersistableContract(t, NewInMemoryPersistable(testLogger(t)), true, rapid.String())
}

func TestInMemoryPersistableLogicDoesNotMutate(t *testing.T) {
	store := NewInMemoryPersistable(testLogger(t))
	before := store.Snapshot()

	for _, id := range []uint32{1, 2, 3, 4, 99} {
		_, err := domain.NewEntity(id).Logic(context.Background(), store)
		require.NoError(t, err)
	}

	assert.Equal(t, before, store.Snapshot())
}

func TestInMemoryPersistableInitResets(t *testing.T) {
	store := NewInMemoryPersistable(testLogger(t))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, 1, "changed"))
	require.NoError(t, store.Save(ctx, 50, "extra"))

	store.Init()

	assert.Equal(t, Seed, store.Snapshot())
}

func TestInMemoryPersistableSnapshotIsACopy(t *testing.T) {
	store := NewInMemoryPersistable(testLogger(t))

	snapshot := store.Snapshot()
	snapshot[1] = "tampered"

	got, err := store.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hola", got)
}

func TestInMemoryPersistableConcurrentAccess(t *testing.T) {
	store := NewInMemoryPersistable(testLogger(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.Save(ctx, id, "v")
				_, _ = store.Load(ctx, 1)
			}
		}(uint32(100 + i))
	}
	wg.Wait()

	assert.Len(t, store.Snapshot(), len(Seed)+16)
}
