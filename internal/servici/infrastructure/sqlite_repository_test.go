package infrastructure

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
)

func openSQLiteStore(t *testing.T, path string) *SQLitePersistable {
	t.Helper()

	store, err := OpenSQLitePersistable(path, testLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLitePersistableContract(t *testing.T) {
	store := openSQLiteStore(t, filepath.Join(t.TempDir(), "servici.db"))
	require.NoError(t, SeedMissing(context.Background(), store, Seed))

	checkPersistableContract(t, store, true, printableText())
}

func TestSQLitePersistableSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servici.db")
	ctx := context.Background()

	first, err := OpenSQLitePersistable(path, testLogger(t))
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, 10, "persistente"))
	require.NoError(t, first.Close())

	second := openSQLiteStore(t, path)
	got, err := second.Load(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "persistente", got)
}

func TestSQLitePersistableRequiresPath(t *testing.T) {
	_, err := OpenSQLitePersistable("  ", testLogger(t))
	assert.Error(t, err)
}

func TestSQLitePersistableClosedDatabase(t *testing.T) {
	store, err := OpenSQLitePersistable(filepath.Join(t.TempDir(), "servici.db"), testLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Save(context.Background(), 1, "x")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = store.Load(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
