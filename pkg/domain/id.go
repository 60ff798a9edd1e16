package domain

// IDGenerator gera identificadores para mensagens e requisições.
type IDGenerator[T comparable] func() T
