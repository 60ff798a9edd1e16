package servici

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-servici/internal/servici/application"
	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	"github.com/mateusmacedo/go-servici/internal/servici/infrastructure"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
)

// Buses agrupa os barramentos que a fatia usa. Qualquer implementação serve:
// simples em processo ou watermill.
type Buses struct {
	Execute infrastructure.ExecuteCommandBus
	Save    infrastructure.SaveMessageBus
	Find    infrastructure.FindMessageBus
	Events  pkgApp.EventBus[pkgDomain.Event[application.Response], application.Response]
}

type ServiciSlice struct {
	service     *application.CommandService
	httpHandler *infrastructure.ServiciHTTPHandler
}

// NewServiciSlice registra os handlers nos barramentos e monta o transporte HTTP.
func NewServiciSlice(
	buses Buses,
	store domain.Persistable,
	idGenerator pkgDomain.IDGenerator[string],
	entityID uint32,
	requestTimeout time.Duration,
	logger pkgApp.AppLogger,
) *ServiciSlice {
	service := application.NewCommandService(store, buses.Events, logger)

	buses.Execute.RegisterHandler(application.ExecuteCommandName, application.NewExecuteCommandHandler(service, logger))
	buses.Save.RegisterHandler(application.SaveMessageName, application.NewSaveMessageHandler(service, logger))
	buses.Find.RegisterHandler(application.FindMessageName, application.NewFindMessageHandler(service, logger))
	buses.Events.RegisterHandler(application.CommandExecutedName, application.NewCommandExecutedEventHandler(logger))

	httpHandler := infrastructure.NewServiciHTTPHandler(service, buses.Execute, buses.Save, buses.Find, idGenerator, entityID, requestTimeout, logger)

	return &ServiciSlice{
		service:     service,
		httpHandler: httpHandler,
	}
}

// Service expõe o serviço para hosts que não passam por HTTP.
func (s *ServiciSlice) Service() *application.CommandService {
	return s.service
}

func (s *ServiciSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
