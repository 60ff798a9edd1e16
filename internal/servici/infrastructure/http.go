package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/go-servici/internal/servici/application"
	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
)

const (
	RequestIDHeader       = "X-Request-ID"
	defaultRequestTimeout = 10 * time.Second

	// StatusClientClosedRequest é o código (fora do padrão, usado pelo nginx)
	// para pedidos que o cliente abandonou antes da resposta.
	StatusClientClosedRequest = 499
)

type (
	ExecuteCommandBus = pkgApp.CommandBus[pkgDomain.Command[application.ExecuteCommandData], application.ExecuteCommandData]
	SaveMessageBus    = pkgApp.CommandBus[pkgDomain.Command[application.SaveMessageData], application.SaveMessageData]
	FindMessageBus    = pkgApp.QueryBus[pkgDomain.Query[application.FindMessageData], application.FindMessageData, string]
)

type ServiciHTTPHandler struct {
	service    *application.CommandService
	executeBus ExecuteCommandBus
	saveBus    SaveMessageBus
	findBus    FindMessageBus
	requestIDs pkgDomain.IDGenerator[string]
	entityID   uint32
	timeout    time.Duration
	logger     pkgApp.AppLogger
}

// NewServiciHTTPHandler monta o handler. requestIDs gera o id quando o cliente não
// envia X-Request-ID; entityID é a entidade usada por POST /commands; timeout <= 0 usa 10s.
func NewServiciHTTPHandler(
	service *application.CommandService,
	executeBus ExecuteCommandBus,
	saveBus SaveMessageBus,
	findBus FindMessageBus,
	requestIDs pkgDomain.IDGenerator[string],
	entityID uint32,
	timeout time.Duration,
	logger pkgApp.AppLogger,
) *ServiciHTTPHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if requestIDs == nil {
		requestIDs = pkgInfra.UUIDGenerator()
	}
	return &ServiciHTTPHandler{
		service:    service,
		executeBus: executeBus,
		saveBus:    saveBus,
		findBus:    findBus,
		requestIDs: requestIDs,
		entityID:   entityID,
		timeout:    timeout,
		logger:     logger,
	}
}

type commandRequest struct {
	Command *string `json:"command"`
}

type messageRequest struct {
	Value *string `json:"value"`
}

type messageResponse struct {
	ID    uint32 `json:"id"`
	Value string `json:"value"`
}

// RequestIDMiddleware aceita o X-Request-ID do cliente ou gera um novo com generate,
// guarda-o no contexto e devolve-o no cabeçalho da resposta.
func RequestIDMiddleware(generate pkgDomain.IDGenerator[string]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = generate()
			}
			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(pkgApp.WithRequestID(r.Context(), requestID)))
		})
	}
}

func (h *ServiciHTTPHandler) HandleExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == nil {
		handleError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	response, err := h.service.Execute(ctx, application.ExecuteCommandData{
		RequestID: pkgApp.RequestIDFromContext(ctx),
		Command:   *req.Command,
		EntityID:  h.entityID,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ServiciHTTPHandler) HandleExecuteCommandAsync(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == nil {
		handleError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	requestID := pkgApp.RequestIDFromContext(ctx)
	command := application.NewExecuteCommand(application.ExecuteCommandData{
		RequestID: requestID,
		Command:   *req.Command,
		EntityID:  h.entityID,
	})
	if err := h.executeBus.Dispatch(ctx, command); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"req_id": requestID})
}

// HandleSaveMessage grava direto no serviço e só responde 204 depois que o store
// confirmou; falhas do meio viram 503.
func (h *ServiciHTTPHandler) HandleSaveMessage(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeSaveMessage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.service.SaveMessage(ctx, data); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSaveMessageAsync só confirma a publicação do comando. Falhas do store
// passam pelas novas tentativas do barramento e depois vão para o tópico poison.
func (h *ServiciHTTPHandler) HandleSaveMessageAsync(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeSaveMessage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.saveBus.Dispatch(ctx, application.NewSaveMessageCommand(data)); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"req_id": pkgApp.RequestIDFromContext(ctx)})
}

func (h *ServiciHTTPHandler) HandleFindMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMessageID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	value, err := h.findBus.Dispatch(ctx, application.NewFindMessageQuery(application.FindMessageData{ID: id}))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{ID: id, Value: value})
}

func (h *ServiciHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(RequestIDMiddleware(h.requestIDs), middleware.Recoverer)

		r.Post("/commands", h.HandleExecuteCommand)
		r.Post("/commands/async", h.HandleExecuteCommandAsync)
		r.Put("/messages/{id}", h.HandleSaveMessage)
		r.Put("/messages/{id}/async", h.HandleSaveMessageAsync)
		r.Get("/messages/{id}", h.HandleFindMessage)
	})
}

func (h *ServiciHTTPHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	text := ""
	switch {
	case errors.Is(err, domain.ErrReservedValue):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPersistence):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = StatusClientClosedRequest
		text = "Client Closed Request"
	}
	if text == "" {
		text = http.StatusText(status)
	}

	pkgApp.LogError(ctx, h.logger, "request failed", err, map[string]interface{}{"status": status})
	handleError(w, text, status)
}

func decodeSaveMessage(w http.ResponseWriter, r *http.Request) (application.SaveMessageData, bool) {
	id, ok := parseMessageID(w, r)
	if !ok {
		return application.SaveMessageData{}, false
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		handleError(w, "Invalid request", http.StatusBadRequest)
		return application.SaveMessageData{}, false
	}
	if *req.Value == domain.NotFound {
		handleError(w, "Reserved value", http.StatusBadRequest)
		return application.SaveMessageData{}, false
	}
	return application.SaveMessageData{ID: id, Value: *req.Value}, true
}

func parseMessageID(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		handleError(w, "Invalid message id", http.StatusBadRequest)
		return 0, false
	}
	return uint32(id), true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func handleError(w http.ResponseWriter, message string, statusCode int) {
	http.Error(w, message, statusCode)
}
