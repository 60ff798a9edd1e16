package domain

import "context"

// Entity é a unidade de regra de negócio. Só enxerga armazenamento através de Persistable.
type Entity struct {
	ID      uint32 `json:"id"`
	Message string `json:"message"`
}

func NewEntity(id uint32) *Entity {
	return &Entity{ID: id}
}

// Logic carrega a mensagem associada ao ID da entidade, guarda-a em Message e a devolve.
// Erros do Persistable sobem sem alteração.
func (e *Entity) Logic(ctx context.Context, p Persistable) (string, error) {
	msg, err := p.Load(ctx, e.ID)
	if err != nil {
		return "", err
	}
	e.Message = msg
	return msg, nil
}

// Persist grava Message sob o ID da entidade.
func (e *Entity) Persist(ctx context.Context, p Persistable) error {
	return p.Save(ctx, e.ID, e.Message)
}
