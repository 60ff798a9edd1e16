package domain

// Event representa um fato já ocorrido, publicado para quem tiver interesse.
type Event[T any] interface {
	EventName() string
	Payload() T
}
