package servici

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-servici/internal/servici/application"
	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	"github.com/mateusmacedo/go-servici/internal/servici/infrastructure"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
	wmAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/zaplogger/adapter"
)

func testLogger(t *testing.T) pkgApp.AppLogger {
	return zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
}

func simpleBuses(logger pkgApp.AppLogger) Buses {
	return Buses{
		Execute: pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ExecuteCommandData], application.ExecuteCommandData](logger),
		Save:    pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.SaveMessageData], application.SaveMessageData](logger),
		Find:    pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindMessageData], application.FindMessageData, string](logger),
		Events:  pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.Response], application.Response](logger),
	}
}

// fastRetry mantém o retry dos barramentos, mas sem o backoff de produção.
var fastRetry = middleware.Retry{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	Multiplier:      2,
}

func newPubSub(t *testing.T, logger pkgApp.AppLogger) *gochannel.GoChannel {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmAdapter.NewWatermillLoggerAdapter(logger))
	t.Cleanup(func() { _ = pubSub.Close() })
	return pubSub
}

func watermillBusesOn(t *testing.T, pubSub *gochannel.GoChannel, logger pkgApp.AppLogger) Buses {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	buses, err := NewWatermillBuses(ctx, pubSub, pubSub, pubSub, fastRetry, logger)
	require.NoError(t, err)
	return buses
}

func watermillBuses(t *testing.T, logger pkgApp.AppLogger) Buses {
	return watermillBusesOn(t, newPubSub(t, logger), logger)
}

func post(router http.Handler, path, body, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if requestID != "" {
		req.Header.Set(infrastructure.RequestIDHeader, requestID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServiciSliceEndToEnd(t *testing.T) {
	cases := []struct {
		name  string
		buses func(t *testing.T, logger pkgApp.AppLogger) Buses
	}{
		{name: "simple", buses: func(_ *testing.T, logger pkgApp.AppLogger) Buses { return simpleBuses(logger) }},
		{name: "watermill", buses: watermillBuses},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := testLogger(t)
			store := infrastructure.NewInMemoryPersistable(logger)
			slice := NewServiciSlice(tc.buses(t, logger), store, pkgInfra.UUIDGenerator(), 1, 2*time.Second, logger)

			router := chi.NewRouter()
			slice.RegisterRoutes(router)

			rec := post(router, "/commands", `{"command":"do something"}`, "abc-123")
			require.Equal(t, http.StatusOK, rec.Code)

			var response application.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, application.Response{
				ReqID:    "abc-123",
				Msg:      "Command do something executed.",
				DummyMsg: "DummyMessage hola .",
			}, response)

			req := httptest.NewRequest(http.MethodPut, "/messages/99", strings.NewReader(`{"value":"ola"}`))
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, "ola", store.Snapshot()[99])

			req = httptest.NewRequest(http.MethodGet, "/messages/99", nil)
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":99,"value":"ola"}`, rec.Body.String())

			rec = post(router, "/commands/async", `{"command":"later"}`, "async-1")
			require.Equal(t, http.StatusAccepted, rec.Code)
			assert.JSONEq(t, `{"req_id":"async-1"}`, rec.Body.String())

			req = httptest.NewRequest(http.MethodPut, "/messages/100/async", strings.NewReader(`{"value":"tchau"}`))
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusAccepted, rec.Code)
			assert.Eventually(t, func() bool {
				return store.Snapshot()[100] == "tchau"
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestServiciSliceServiceSharesStore(t *testing.T) {
	logger := testLogger(t)
	store := infrastructure.NewInMemoryPersistable(logger)
	slice := NewServiciSlice(simpleBuses(logger), store, pkgInfra.UUIDGenerator(), 1, 0, logger)

	response, err := slice.Service().Execute(context.Background(), application.ExecuteCommandData{
		RequestID: "abc-123",
		Command:   "do something",
		EntityID:  99,
	})

	require.NoError(t, err)
	assert.Equal(t, "DummyMessage NAN .", response.DummyMsg)
	assert.Equal(t, infrastructure.Seed, store.Snapshot())
}

// unavailableStore conta as gravações e falha todas como meio indisponível.
type unavailableStore struct {
	saves atomic.Int32
}

func (s *unavailableStore) Save(_ context.Context, id uint32, _ string) error {
	s.saves.Add(1)
	return domain.NewPersistenceError("save", id, errors.New("unavailable"))
}

func (s *unavailableStore) Load(_ context.Context, id uint32) (string, error) {
	return "", domain.NewPersistenceError("load", id, errors.New("unavailable"))
}

func TestServiciSliceSurfacesStoreFailuresOverWatermill(t *testing.T) {
	logger := testLogger(t)
	pubSub := newPubSub(t, logger)
	store := &unavailableStore{}
	slice := NewServiciSlice(watermillBusesOn(t, pubSub, logger), store, pkgInfra.UUIDGenerator(), 1, 2*time.Second, logger)

	router := chi.NewRouter()
	slice.RegisterRoutes(router)

	poisoned, err := pubSub.Subscribe(context.Background(), application.SaveMessageName+wmAdapter.PoisonTopicSuffix)
	require.NoError(t, err)

	do := func(method, path, body string) int {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec.Code
	}

	// a gravação síncrona responde com o erro do store, sem sucesso falso
	assert.Equal(t, http.StatusServiceUnavailable, do(http.MethodPut, "/messages/1", `{"value":"x"}`))
	assert.Equal(t, int32(1), store.saves.Load())

	// a assíncrona é aceita; as tentativas são limitadas e a mensagem termina no poison
	assert.Equal(t, http.StatusAccepted, do(http.MethodPut, "/messages/1/async", `{"value":"x"}`))
	select {
	case msg := <-poisoned:
		msg.Ack()
		assert.Contains(t, msg.Metadata.Get(middleware.ReasonForPoisonedKey), "unavailable")
	case <-time.After(2 * time.Second):
		t.Fatal("save command was not sent to the poison topic")
	}
	assert.Equal(t, int32(1+1+fastRetry.MaxRetries), store.saves.Load())

	// a falha do store atravessa a resposta da consulta
	assert.Equal(t, http.StatusServiceUnavailable, do(http.MethodGet, "/messages/1", ""))
	assert.Equal(t, http.StatusServiceUnavailable, do(http.MethodPost, "/commands", `{"command":"c"}`))
}
