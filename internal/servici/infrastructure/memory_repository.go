package infrastructure

import (
	"context"
	"sync"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
)

// Seed é o conjunto fixo com que o repositório em memória é inicializado.
var Seed = map[uint32]string{
	1: "hola",
	2: "adios",
	3: "mundo",
	4: "nube",
}

// InMemoryPersistable é a implementação de referência de domain.Persistable.
// Sem limite de capacidade: serve para testes e demonstração.
type InMemoryPersistable struct {
	mu     sync.RWMutex
	data   map[uint32]string
	logger pkgApp.AppLogger
}

// NewInMemoryPersistable devolve um repositório já inicializado com Seed.
func NewInMemoryPersistable(logger pkgApp.AppLogger) *InMemoryPersistable {
	r := &InMemoryPersistable{logger: logger}
	r.Init()
	return r
}

// Init descarta o conteúdo atual e recarrega Seed.
func (r *InMemoryPersistable) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = make(map[uint32]string, len(Seed))
	for id, value := range Seed {
		r.data[id] = value
	}
}

func (r *InMemoryPersistable) Save(ctx context.Context, id uint32, value string) error {
	r.mu.Lock()
	r.data[id] = value
	r.mu.Unlock()

	pkgApp.LogDebug(ctx, r.logger, "message saved", map[string]interface{}{
		"id":    id,
		"value": value,
	})
	return nil
}

func (r *InMemoryPersistable) Load(ctx context.Context, id uint32) (string, error) {
	r.mu.RLock()
	value, exists := r.data[id]
	r.mu.RUnlock()

	if !exists {
		pkgApp.LogDebug(ctx, r.logger, "message not found", map[string]interface{}{"id": id})
		return domain.NotFound, nil
	}

	pkgApp.LogDebug(ctx, r.logger, "message loaded", map[string]interface{}{"id": id})
	return value, nil
}

// Snapshot devolve uma cópia de todo o conteúdo.
func (r *InMemoryPersistable) Snapshot() map[uint32]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uint32]string, len(r.data))
	for id, value := range r.data {
		out[id] = value
	}
	return out
}
