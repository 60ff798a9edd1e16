package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/go-servici/pkg/application"
	"github.com/mateusmacedo/go-servici/pkg/domain"
)

// WatermillQueryBus implementa request/reply sobre pub/sub: a consulta vai para
// o tópico <query> e a resposta volta em <query>_response, casada pelo
// metadado correlation_id.
//
// As consultas são lidas com subscriber, que pode ser um consumer group
// compartilhado. As respostas são lidas com replySubscriber numa única
// assinatura por tópico, que repassa cada resposta ao Dispatch que a espera.
// replySubscriber precisa receber todas as respostas destinadas a esta
// instância: gochannel, ou um consumer group próprio da instância em kafka/redis.
type WatermillQueryBus[Q domain.Query[D], D any, R any] struct {
	ctx             context.Context
	publisher       message.Publisher
	subscriber      message.Subscriber
	replySubscriber message.Subscriber
	handlers        map[string]application.QueryHandler[Q, D, R]
	replyErrors     []error
	mu              sync.RWMutex

	repliesMu   sync.Mutex
	replyTopics map[string]struct{}
	pending     map[string]chan []byte

	logger application.AppLogger
}

func NewWatermillQueryBus[Q domain.Query[D], D any, R any](ctx context.Context, publisher message.Publisher, subscriber, replySubscriber message.Subscriber, logger application.AppLogger) *WatermillQueryBus[Q, D, R] {
	return &WatermillQueryBus[Q, D, R]{
		ctx:             ctx,
		publisher:       publisher,
		subscriber:      subscriber,
		replySubscriber: replySubscriber,
		handlers:        make(map[string]application.QueryHandler[Q, D, R]),
		replyTopics:     make(map[string]struct{}),
		pending:         make(map[string]chan []byte),
		logger:          logger,
	}
}

// WithReplyErrors registra erros sentinela que atravessam o transporte: se o
// handler remoto falhar com um deles, o erro de Dispatch satisfaz errors.Is
// com o mesmo sentinela. Os dois lados precisam registrar a mesma lista, na mesma ordem.
func (bus *WatermillQueryBus[Q, D, R]) WithReplyErrors(errs ...error) *WatermillQueryBus[Q, D, R] {
	bus.mu.Lock()
	bus.replyErrors = append(bus.replyErrors, errs...)
	bus.mu.Unlock()
	return bus
}

func (bus *WatermillQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	_, subscribed := bus.handlers[queryName]
	bus.handlers[queryName] = handler
	bus.mu.Unlock()

	if subscribed {
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, queryName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to query", err, map[string]interface{}{
			"query_name": queryName,
		})
		return
	}

	go func() {
		for msg := range messages {
			bus.handleMessage(queryName, msg)
		}
	}()
}

// ListenReplies abre as assinaturas de resposta das consultas informadas.
// Dispatch faz isso sob demanda; chamar na subida evita perder a primeira
// resposta em transportes cuja assinatura fica pronta de forma assíncrona.
func (bus *WatermillQueryBus[Q, D, R]) ListenReplies(queryNames ...string) error {
	for _, queryName := range queryNames {
		if err := bus.listenReplies(queryName + ResponseTopicSuffix); err != nil {
			return err
		}
	}
	return nil
}

func (bus *WatermillQueryBus[Q, D, R]) listenReplies(topic string) error {
	bus.repliesMu.Lock()
	defer bus.repliesMu.Unlock()

	if _, ok := bus.replyTopics[topic]; ok {
		return nil
	}

	replies, err := bus.replySubscriber.Subscribe(bus.ctx, topic)
	if err != nil {
		return err
	}
	bus.replyTopics[topic] = struct{}{}

	go bus.routeReplies(topic, replies)
	return nil
}

// routeReplies entrega cada resposta ao Dispatch com o mesmo correlation_id.
// Respostas sem ninguém esperando (outra instância, ou prazo já vencido) são descartadas.
func (bus *WatermillQueryBus[Q, D, R]) routeReplies(topic string, replies <-chan *message.Message) {
	for msg := range replies {
		correlationID := msg.Metadata.Get(correlationIDMetadataKey)

		bus.repliesMu.Lock()
		waiter, ok := bus.pending[correlationID]
		if ok {
			delete(bus.pending, correlationID)
		}
		bus.repliesMu.Unlock()

		if ok {
			waiter <- msg.Payload
		} else {
			application.LogDebug(bus.ctx, bus.logger, "discarding query response", map[string]interface{}{
				"topic":          topic,
				"correlation_id": correlationID,
			})
		}
		msg.Ack()
	}

	bus.repliesMu.Lock()
	delete(bus.replyTopics, topic)
	bus.repliesMu.Unlock()
}

func (bus *WatermillQueryBus[Q, D, R]) handleMessage(queryName string, msg *message.Message) {
	ctx := messageContext(bus.ctx, msg)
	reply := queryReply[R]{}

	payload, err := decodePayload[D](msg)
	if err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling query payload", err, map[string]interface{}{
			"query_name": queryName,
		})
		reply.Error = err.Error()
	} else if typedQuery, ok := any(domain.NewQuery(queryName, payload)).(Q); !ok {
		application.LogError(ctx, bus.logger, "error asserting query type", ErrUnexpectedType, map[string]interface{}{
			"query_name": queryName,
		})
		reply.Error = ErrUnexpectedType.Error()
	} else {
		bus.mu.RLock()
		handler := bus.handlers[queryName]
		bus.mu.RUnlock()

		result, err := handler.Handle(ctx, typedQuery)
		if err != nil {
			application.LogError(ctx, bus.logger, "error handling query", err, map[string]interface{}{
				"query_name": queryName,
			})
			reply.Error = err.Error()
			reply.Kind = bus.errorKind(err)
		} else {
			reply.Result = result
		}
	}

	responseMsg, err := newMessage(ctx, reply)
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling query result", err, map[string]interface{}{
			"query_name": queryName,
		})
		msg.Ack()
		return
	}
	responseMsg.Metadata.Set(correlationIDMetadataKey, msg.Metadata.Get(correlationIDMetadataKey))

	if err := bus.publisher.Publish(queryName+ResponseTopicSuffix, responseMsg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing query response", err, map[string]interface{}{
			"query_name": queryName,
		})
		msg.Nack()
		return
	}

	application.LogDebug(ctx, bus.logger, "query handled", map[string]interface{}{
		"query_name": queryName,
	})
	msg.Ack()
}

// errorKind é a posição (a partir de 1) do primeiro sentinela registrado que err satisfaz; 0 se nenhum.
func (bus *WatermillQueryBus[Q, D, R]) errorKind(err error) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for i, known := range bus.replyErrors {
		if errors.Is(err, known) {
			return i + 1
		}
	}
	return 0
}

func (bus *WatermillQueryBus[Q, D, R]) remoteError(message string, kind int) error {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	if kind > 0 && kind <= len(bus.replyErrors) {
		return fmt.Errorf("%w: %s: %w", ErrRemoteQuery, message, bus.replyErrors[kind-1])
	}
	return fmt.Errorf("%w: %s", ErrRemoteQuery, message)
}

// Dispatch publica a consulta e espera a resposta com o mesmo correlation_id, ou o fim de ctx.
func (bus *WatermillQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	var zero R

	if err := bus.listenReplies(query.QueryName() + ResponseTopicSuffix); err != nil {
		application.LogError(ctx, bus.logger, "error subscribing to query response", err, map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, err
	}

	msg, err := newMessage(ctx, query.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling query payload", err, map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, err
	}
	correlationID := msg.UUID
	msg.Metadata.Set(correlationIDMetadataKey, correlationID)

	waiter := make(chan []byte, 1)
	bus.repliesMu.Lock()
	bus.pending[correlationID] = waiter
	bus.repliesMu.Unlock()
	defer func() {
		bus.repliesMu.Lock()
		delete(bus.pending, correlationID)
		bus.repliesMu.Unlock()
	}()

	if err := bus.publisher.Publish(query.QueryName(), msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing query", err, map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, err
	}

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "error dispatching query", ctx.Err(), map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, ctx.Err()
	case payload := <-waiter:
		var reply queryReply[R]
		if err := json.Unmarshal(payload, &reply); err != nil {
			application.LogError(ctx, bus.logger, "error unmarshalling query response", err, map[string]interface{}{
				"query_name": query.QueryName(),
			})
			return zero, err
		}
		if reply.Error != "" {
			return zero, bus.remoteError(reply.Error, reply.Kind)
		}
		return reply.Result, nil
	}
}
