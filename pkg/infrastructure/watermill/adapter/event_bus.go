package adapter

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.uber.org/multierr"

	"github.com/mateusmacedo/go-servici/pkg/application"
	"github.com/mateusmacedo/go-servici/pkg/domain"
)

// WatermillEventBus publica eventos no tópico com o nome do evento. Cada nome
// tem uma assinatura, que repassa a mensagem a todos os handlers locais. Falhas
// seguem a mesma política de retry e poison do WatermillCommandBus.
type WatermillEventBus[E domain.Event[D], D any] struct {
	ctx        context.Context
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string][]application.EventHandler[E, D]
	retry      middleware.Retry
	mu         sync.RWMutex
	logger     application.AppLogger
}

func NewWatermillEventBus[E domain.Event[D], D any](ctx context.Context, publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillEventBus[E, D] {
	return &WatermillEventBus[E, D]{
		ctx:        ctx,
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string][]application.EventHandler[E, D]),
		retry:      DefaultRetry(NewWatermillLoggerAdapter(logger)),
		logger:     logger,
	}
}

// WithRetry troca a política de retry. Vale para eventos assinados depois da chamada.
func (bus *WatermillEventBus[E, D]) WithRetry(retry middleware.Retry) *WatermillEventBus[E, D] {
	bus.mu.Lock()
	bus.retry = retry
	bus.mu.Unlock()
	return bus
}

func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	first := len(bus.handlers[eventName]) == 0
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	retry := bus.retry
	bus.mu.Unlock()

	if !first {
		return
	}

	handle, err := withRecovery(bus.handlerFunc(eventName), bus.publisher, eventName, retry)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error building event handler", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	go consume(bus.ctx, messages, handle, bus.logger, eventName)
}

func (bus *WatermillEventBus[E, D]) handlerFunc(eventName string) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		return nil, bus.handleMessage(eventName, msg)
	}
}

func (bus *WatermillEventBus[E, D]) handleMessage(eventName string, msg *message.Message) error {
	ctx := messageContext(bus.ctx, msg)

	payload, err := decodePayload[D](msg)
	if err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		return nil
	}

	typedEvent, ok := any(domain.NewEvent(eventName, payload)).(E)
	if !ok {
		application.LogError(ctx, bus.logger, "error casting event", ErrUnexpectedType, map[string]interface{}{
			"event_name": eventName,
		})
		return nil
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	var errs error
	for _, handler := range handlers {
		errs = multierr.Append(errs, handler.Handle(ctx, typedEvent))
	}
	if errs != nil {
		application.LogError(ctx, bus.logger, "error handling event", errs, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		return errs
	}

	application.LogInfo(ctx, bus.logger, "event handled", map[string]interface{}{
		"event_name": eventName,
		"handlers":   len(handlers),
	})
	return nil
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	msg, err := newMessage(ctx, event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": event.EventName(),
		})
		return err
	}

	if err := bus.publisher.Publish(event.EventName(), msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": event.EventName(),
		})
		return err
	}

	application.LogInfo(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name": event.EventName(),
		"message_id": msg.UUID,
	})
	return nil
}
