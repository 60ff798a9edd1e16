package domain

// Query representa uma leitura sem efeitos colaterais.
type Query[T any] interface {
	QueryName() string
	Payload() T
}
