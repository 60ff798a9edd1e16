package application

import (
	"context"
	"fmt"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
)

// CommandService liga o pedido do host à entidade. O store é compartilhado e
// injetado uma vez; a entidade é criada por chamada e descartada.
type CommandService struct {
	store    domain.Persistable
	eventBus pkgApp.EventBus[pkgDomain.Event[Response], Response]
	logger   pkgApp.AppLogger
}

func NewCommandService(store domain.Persistable, eventBus pkgApp.EventBus[pkgDomain.Event[Response], Response], logger pkgApp.AppLogger) *CommandService {
	return &CommandService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Execute roda a lógica da entidade e monta a resposta. Uma falha do store
// aborta a chamada inteira; não existe resposta parcial.
func (s *CommandService) Execute(ctx context.Context, data ExecuteCommandData) (Response, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, s.logger, "context cancelled", ctx.Err(), nil)
		return Response{}, ctx.Err()
	}

	entity := domain.NewEntity(data.EntityID)
	result, err := entity.Logic(ctx, s.store)
	if err != nil {
		pkgApp.LogError(ctx, s.logger, "entity logic failed", err, map[string]interface{}{
			"entity_id": data.EntityID,
			"command":   data.Command,
		})
		return Response{}, err
	}

	response := Response{
		ReqID:    data.RequestID,
		Msg:      fmt.Sprintf("Command %s executed.", data.Command),
		DummyMsg: fmt.Sprintf("DummyMessage %s .", result),
	}

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, NewCommandExecutedEvent(response)); err != nil {
			pkgApp.LogError(ctx, s.logger, "failed to publish event", err, map[string]interface{}{"req_id": response.ReqID})
			return Response{}, err
		}
	}

	pkgApp.LogInfo(ctx, s.logger, "command executed", map[string]interface{}{
		"req_id":  response.ReqID,
		"command": data.Command,
	})
	return response, nil
}

func (s *CommandService) SaveMessage(ctx context.Context, data SaveMessageData) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if data.Value == domain.NotFound {
		pkgApp.LogInfo(ctx, s.logger, "refusing reserved value", map[string]interface{}{"id": data.ID})
		return fmt.Errorf("save message %d: %w", data.ID, domain.ErrReservedValue)
	}

	entity := domain.NewEntity(data.ID)
	entity.Message = data.Value
	if err := entity.Persist(ctx, s.store); err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to persist message", err, map[string]interface{}{"id": data.ID})
		return err
	}
	return nil
}

// FindMessage devolve domain.NotFound quando não há mensagem para o ID.
func (s *CommandService) FindMessage(ctx context.Context, data FindMessageData) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	value, err := domain.NewEntity(data.ID).Logic(ctx, s.store)
	if err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to find message", err, map[string]interface{}{"id": data.ID})
		return "", err
	}
	return value, nil
}
