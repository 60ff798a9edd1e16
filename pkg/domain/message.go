package domain

// named é a implementação comum de Command, Query e Event: um nome e um payload.
// Os barramentos usam-na para reconstruir mensagens recebidas de um transporte.
type named[T any] struct {
	name    string
	payload T
}

func (m named[T]) CommandName() string { return m.name }
func (m named[T]) QueryName() string   { return m.name }
func (m named[T]) EventName() string   { return m.name }
func (m named[T]) Payload() T          { return m.payload }

// NewCommand cria um comando com o nome e payload informados.
func NewCommand[T any](name string, payload T) Command[T] {
	return named[T]{name: name, payload: payload}
}

// NewQuery cria uma consulta com o nome e payload informados.
func NewQuery[T any](name string, payload T) Query[T] {
	return named[T]{name: name, payload: payload}
}

// NewEvent cria um evento com o nome e payload informados.
func NewEvent[T any](name string, payload T) Event[T] {
	return named[T]{name: name, payload: payload}
}
