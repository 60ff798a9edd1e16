package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/go-servici/internal/servici/application"
	"github.com/mateusmacedo/go-servici/internal/servici/infrastructure"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/zaplogger/adapter"
)

func TestHandlersOverSimpleBuses(t *testing.T) {
	logger := testLogger(t)
	store := infrastructure.NewInMemoryPersistable(logger)
	service, recorder := newService(t, store)

	commandBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.SaveMessageData], application.SaveMessageData](logger)
	executeBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ExecuteCommandData], application.ExecuteCommandData](logger)
	queryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindMessageData], application.FindMessageData, string](logger)

	commandBus.RegisterHandler(application.SaveMessageName, application.NewSaveMessageHandler(service, logger))
	executeBus.RegisterHandler(application.ExecuteCommandName, application.NewExecuteCommandHandler(service, logger))
	queryBus.RegisterHandler(application.FindMessageName, application.NewFindMessageHandler(service, logger))

	ctx := context.Background()
	require.NoError(t, commandBus.Dispatch(ctx, application.NewSaveMessageCommand(application.SaveMessageData{ID: 1, Value: "sol"})))

	got, err := queryBus.Dispatch(ctx, application.NewFindMessageQuery(application.FindMessageData{ID: 1}))
	require.NoError(t, err)
	assert.Equal(t, "sol", got)

	require.NoError(t, executeBus.Dispatch(ctx, application.NewExecuteCommand(application.ExecuteCommandData{
		RequestID: "abc-123",
		Command:   "do something",
		EntityID:  1,
	})))
	require.Len(t, recorder.events, 1)
	assert.Equal(t, "DummyMessage sol .", recorder.events[0].DummyMsg)
}

func TestExecuteCommandHandlerCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zapAdapter.NewZapAppLoggerFrom(zap.New(core))
	service := application.NewCommandService(infrastructure.NewInMemoryPersistable(logger), nil, logger)

	handler := application.NewExecuteCommandHandler(service, logger)
	err := handler.Handle(context.Background(), application.NewExecuteCommand(application.ExecuteCommandData{
		RequestID: "req-77",
		Command:   "c",
		EntityID:  1,
	}))
	require.NoError(t, err)

	executed := logs.FilterMessage("command executed").All()
	require.Len(t, executed, 1)
	assert.Equal(t, "req-77", executed[0].ContextMap()["request_id"])
}

func TestCommandExecutedEventHandlerLogsResponse(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zapAdapter.NewZapAppLoggerFrom(zap.New(core))
	handler := application.NewCommandExecutedEventHandler(logger)

	event := application.NewCommandExecutedEvent(application.Response{ReqID: "r1", Msg: "m", DummyMsg: "d"})
	require.NoError(t, handler.Handle(context.Background(), event))

	entries := logs.FilterMessage("event received").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, application.CommandExecutedName, fields["event"])
	assert.Equal(t, "r1", fields["req_id"])
}

func TestCommandExecutedEventHandlerHonoursCancelledContext(t *testing.T) {
	handler := application.NewCommandExecutedEventHandler(testLogger(t))
	ctx, cancel := context.WithCancel(pkgApp.WithRequestID(context.Background(), "x"))
	cancel()

	err := handler.Handle(ctx, application.NewCommandExecutedEvent(application.Response{}))
	assert.ErrorIs(t, err, context.Canceled)
}
