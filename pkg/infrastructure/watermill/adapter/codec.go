package adapter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/go-servici/pkg/application"
)

const (
	requestIDMetadataKey     = "request_id"
	correlationIDMetadataKey = "correlation_id"
)

// ResponseTopicSuffix compõe o tópico de respostas de uma consulta: <query>_response.
const ResponseTopicSuffix = "_response"

// ErrRemoteQuery embrulha o erro devolvido pelo handler remoto de uma consulta.
var ErrRemoteQuery = errors.New("remote query failed")

// ErrUnexpectedType indica que a mensagem decodificada não satisfaz o tipo do barramento.
var ErrUnexpectedType = errors.New("unexpected message type")

func newMessage[T any](ctx context.Context, payload T) (*message.Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	if requestID := application.RequestIDFromContext(ctx); requestID != "" {
		msg.Metadata.Set(requestIDMetadataKey, requestID)
	}
	return msg, nil
}

func decodePayload[T any](msg *message.Message) (T, error) {
	var payload T
	err := json.Unmarshal(msg.Payload, &payload)
	return payload, err
}

// messageContext devolve o contexto de handling de msg, propagando o request id do produtor.
func messageContext(parent context.Context, msg *message.Message) context.Context {
	if requestID := msg.Metadata.Get(requestIDMetadataKey); requestID != "" {
		return application.WithRequestID(parent, requestID)
	}
	return parent
}

// queryReply é o envelope publicado em <query>_response.
type queryReply[R any] struct {
	Result R      `json:"result"`
	Error  string `json:"error,omitempty"`
	// Kind identifica o sentinela registrado com WithReplyErrors; 0 para erros sem tipo.
	Kind int `json:"kind,omitempty"`
}
