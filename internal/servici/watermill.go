package servici

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/mateusmacedo/go-servici/internal/servici/application"
	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
	wmAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/watermill/adapter"
)

// NewWatermillBuses monta os barramentos watermill da fatia. subscriber é o
// grupo compartilhado entre instâncias; replySubscriber recebe só as respostas
// de consulta desta instância.
func NewWatermillBuses(
	ctx context.Context,
	publisher message.Publisher,
	subscriber, replySubscriber message.Subscriber,
	retry middleware.Retry,
	logger pkgApp.AppLogger,
) (Buses, error) {
	find := wmAdapter.NewWatermillQueryBus[pkgDomain.Query[application.FindMessageData], application.FindMessageData, string](ctx, publisher, subscriber, replySubscriber, logger).
		WithReplyErrors(domain.ErrPersistence, domain.ErrReservedValue)
	if err := find.ListenReplies(application.FindMessageName); err != nil {
		return Buses{}, fmt.Errorf("listen replies: %w", err)
	}

	return Buses{
		Execute: wmAdapter.NewWatermillCommandBus[pkgDomain.Command[application.ExecuteCommandData], application.ExecuteCommandData](ctx, publisher, subscriber, logger).WithRetry(retry),
		Save:    wmAdapter.NewWatermillCommandBus[pkgDomain.Command[application.SaveMessageData], application.SaveMessageData](ctx, publisher, subscriber, logger).WithRetry(retry),
		Find:    find,
		Events:  wmAdapter.NewWatermillEventBus[pkgDomain.Event[application.Response], application.Response](ctx, publisher, subscriber, logger).WithRetry(retry),
	}, nil
}
