package infrastructure

import (
	"context"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	zapAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/zaplogger/adapter"
)

func testLogger(t *testing.T) pkgApp.AppLogger {
	return zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
}

// checkPersistableContract exercita as propriedades que toda implementação de
// domain.Persistable precisa cumprir. seeded indica se o store começa com Seed;
// values gera os textos gravados.
func checkPersistableContract(t *testing.T, store domain.Persistable, seeded bool, values *rapid.Generator[string]) {
	ctx := context.Background()

	if seeded {
		t.Run("seeded keys load seeded text", func(t *testing.T) {
			for id, want := range Seed {
				got, err := store.Load(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				logic, err := domain.NewEntity(id).Logic(ctx, store)
				require.NoError(t, err)
				assert.Equal(t, want, logic)
			}
		})
	}

	t.Run("absent key returns sentinel consistently", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			got, err := store.Load(ctx, 4_000_000_000)
			require.NoError(t, err)
			assert.Equal(t, domain.NotFound, got)
		}
	})

	t.Run("read your writes", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			id := rapid.Uint32Range(1000, 1_000_000).Draw(rt, "id")
			value := values.Draw(rt, "value")

			require.NoError(rt, store.Save(ctx, id, value))
			got, err := store.Load(ctx, id)
			require.NoError(rt, err)
			assert.Equal(rt, value, got)
		})
	})

	t.Run("last write wins", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			id := rapid.Uint32Range(1000, 1_000_000).Draw(rt, "id")
			first := values.Draw(rt, "first")
			second := values.Draw(rt, "second")

			require.NoError(rt, store.Save(ctx, id, first))
			require.NoError(rt, store.Save(ctx, id, second))
			got, err := store.Load(ctx, id)
			require.NoError(rt, err)
			assert.Equal(rt, second, got)
		})
	})
}

// printableText evita NUL e controles, que alguns drivers SQL não preservam.
func printableText() *rapid.Generator[string] {
	return rapid.StringOf(rapid.RuneFrom(nil, unicode.Letter, unicode.Digit, unicode.Punct, unicode.Space))
}
