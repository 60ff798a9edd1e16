package adapter

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/mateusmacedo/go-servici/pkg/application"
)

// PoisonTopicSuffix compõe o tópico das mensagens que esgotaram as tentativas: <topic>_poison.
const PoisonTopicSuffix = "_poison"

// DefaultRetry faz até 3 novas tentativas com backoff exponencial de 100ms a 1s.
func DefaultRetry(logger watermill.LoggerAdapter) middleware.Retry {
	return middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}
}

// withRecovery envolve handle com retry limitado e, esgotadas as tentativas,
// publica a mensagem em <topic>_poison.
func withRecovery(handle message.HandlerFunc, publisher message.Publisher, topic string, retry middleware.Retry) (message.HandlerFunc, error) {
	poison, err := middleware.PoisonQueue(publisher, topic+PoisonTopicSuffix)
	if err != nil {
		return nil, err
	}
	return poison(retry.Middleware(handle)), nil
}

// consume confirma toda mensagem tratada ou enviada ao poison. Só há Nack
// quando nem o tópico de poison aceitou a mensagem.
func consume(ctx context.Context, messages <-chan *message.Message, handle message.HandlerFunc, logger application.AppLogger, topic string) {
	for msg := range messages {
		if _, err := handle(msg); err != nil {
			application.LogError(ctx, logger, "error publishing to poison queue", err, map[string]interface{}{
				"topic":      topic,
				"message_id": msg.UUID,
			})
			msg.Nack()
			continue
		}
		msg.Ack()
	}
}
