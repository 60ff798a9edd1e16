package adapter

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/mateusmacedo/go-servici/pkg/application"
	"github.com/mateusmacedo/go-servici/pkg/domain"
)

// WatermillCommandBus publica comandos num tópico com o nome do comando e os
// consome com o handler registrado. Funciona sobre qualquer Publisher/Subscriber
// do watermill (gochannel, kafka, redis streams).
//
// Dispatch só confirma a publicação: erros do handler não voltam ao chamador.
// O handler é repetido conforme a política de retry e, se continuar falhando, a
// mensagem vai para <comando>_poison.
type WatermillCommandBus[C domain.Command[T], T any] struct {
	ctx        context.Context
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string]application.CommandHandler[C, T]
	retry      middleware.Retry
	mu         sync.RWMutex
	logger     application.AppLogger
}

// NewWatermillCommandBus cria o barramento; ctx limita a vida das assinaturas.
func NewWatermillCommandBus[C domain.Command[T], T any](ctx context.Context, publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillCommandBus[C, T] {
	return &WatermillCommandBus[C, T]{
		ctx:        ctx,
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string]application.CommandHandler[C, T]),
		retry:      DefaultRetry(NewWatermillLoggerAdapter(logger)),
		logger:     logger,
	}
}

// WithRetry troca a política de retry. Vale para handlers registrados depois da chamada.
func (bus *WatermillCommandBus[C, T]) WithRetry(retry middleware.Retry) *WatermillCommandBus[C, T] {
	bus.mu.Lock()
	bus.retry = retry
	bus.mu.Unlock()
	return bus
}

// RegisterHandler assina o tópico antes de retornar, então um Dispatch posterior não se perde.
func (bus *WatermillCommandBus[C, T]) RegisterHandler(commandName string, handler application.CommandHandler[C, T]) {
	bus.mu.Lock()
	_, subscribed := bus.handlers[commandName]
	bus.handlers[commandName] = handler
	retry := bus.retry
	bus.mu.Unlock()

	if subscribed {
		return
	}

	handle, err := withRecovery(bus.handlerFunc(commandName), bus.publisher, commandName, retry)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error building command handler", err, map[string]interface{}{
			"command_name": commandName,
		})
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, commandName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to command", err, map[string]interface{}{
			"command_name": commandName,
		})
		return
	}

	go consume(bus.ctx, messages, handle, bus.logger, commandName)
}

func (bus *WatermillCommandBus[C, T]) handlerFunc(commandName string) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := messageContext(bus.ctx, msg)

		payload, err := decodePayload[T](msg)
		if err != nil {
			// payload inválido nunca vai decodificar; descarta sem repetir
			application.LogError(ctx, bus.logger, "error unmarshalling command payload", err, map[string]interface{}{
				"command_name": commandName,
				"message_id":   msg.UUID,
			})
			return nil, nil
		}

		typedCommand, ok := any(domain.NewCommand(commandName, payload)).(C)
		if !ok {
			application.LogError(ctx, bus.logger, "error asserting command type", ErrUnexpectedType, map[string]interface{}{
				"command_name": commandName,
			})
			return nil, nil
		}

		bus.mu.RLock()
		handler := bus.handlers[commandName]
		bus.mu.RUnlock()

		if err := handler.Handle(ctx, typedCommand); err != nil {
			application.LogError(ctx, bus.logger, "error handling command", err, map[string]interface{}{
				"command_name": commandName,
				"message_id":   msg.UUID,
			})
			return nil, err
		}

		application.LogInfo(ctx, bus.logger, "command handled", map[string]interface{}{
			"command_name": commandName,
			"message_id":   msg.UUID,
		})
		return nil, nil
	}
}

func (bus *WatermillCommandBus[C, T]) Dispatch(ctx context.Context, command C) error {
	msg, err := newMessage(ctx, command.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling command payload", err, map[string]interface{}{
			"command_name": command.CommandName(),
		})
		return err
	}

	if err := bus.publisher.Publish(command.CommandName(), msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing command", err, map[string]interface{}{
			"command_name": command.CommandName(),
		})
		return err
	}

	application.LogDebug(ctx, bus.logger, "command dispatched", map[string]interface{}{
		"command_name": command.CommandName(),
		"message_id":   msg.UUID,
	})
	return nil
}
