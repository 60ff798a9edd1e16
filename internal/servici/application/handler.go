package application

import (
	"context"

	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
)

type executeCommandHandler struct {
	service *CommandService
	logger  pkgApp.AppLogger
}

func (h *executeCommandHandler) Handle(ctx context.Context, command pkgDomain.Command[ExecuteCommandData]) error {
	data := command.Payload()
	if data.RequestID != "" && pkgApp.RequestIDFromContext(ctx) == "" {
		ctx = pkgApp.WithRequestID(ctx, data.RequestID)
	}

	_, err := h.service.Execute(ctx, data)
	return err
}

func NewExecuteCommandHandler(service *CommandService, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[ExecuteCommandData], ExecuteCommandData] {
	return &executeCommandHandler{
		service: service,
		logger:  logger,
	}
}

type saveMessageHandler struct {
	service *CommandService
	logger  pkgApp.AppLogger
}

func (h *saveMessageHandler) Handle(ctx context.Context, command pkgDomain.Command[SaveMessageData]) error {
	data := command.Payload()
	if err := h.service.SaveMessage(ctx, data); err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "message saved", map[string]interface{}{"id": data.ID})
	return nil
}

func NewSaveMessageHandler(service *CommandService, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[SaveMessageData], SaveMessageData] {
	return &saveMessageHandler{
		service: service,
		logger:  logger,
	}
}

type findMessageHandler struct {
	service *CommandService
	logger  pkgApp.AppLogger
}

func (h *findMessageHandler) Handle(ctx context.Context, query pkgDomain.Query[FindMessageData]) (string, error) {
	data := query.Payload()
	value, err := h.service.FindMessage(ctx, data)
	if err != nil {
		return "", err
	}

	pkgApp.LogDebug(ctx, h.logger, "message found", map[string]interface{}{"id": data.ID})
	return value, nil
}

func NewFindMessageHandler(service *CommandService, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindMessageData], FindMessageData, string] {
	return &findMessageHandler{
		service: service,
		logger:  logger,
	}
}

type commandExecutedEventHandler struct {
	logger pkgApp.AppLogger
}

func (h *commandExecutedEventHandler) Handle(ctx context.Context, event pkgDomain.Event[Response]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	response := event.Payload()
	pkgApp.LogInfo(ctx, h.logger, "event received", map[string]interface{}{
		"event":     event.EventName(),
		"req_id":    response.ReqID,
		"msg":       response.Msg,
		"dummy_msg": response.DummyMsg,
	})
	return nil
}

func NewCommandExecutedEventHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[Response], Response] {
	return &commandExecutedEventHandler{
		logger: logger,
	}
}
