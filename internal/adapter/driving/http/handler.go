// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/oncoassist/internal/application"
	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// maxBodyBytes bounds the size of a JSON request body.
const maxBodyBytes = 64 << 10

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	askSvc  *application.AskService
	session *application.Session
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. Credential
// changes go through session so the web page sees them immediately.
func NewHandler(askSvc *application.AskService, session *application.Session, logger *slog.Logger) *Handler {
	return &Handler{
		askSvc:  askSvc,
		session: session,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/ask", h.Ask)
	mux.HandleFunc("GET /api/v1/credential", h.GetCredential)
	mux.HandleFunc("PUT /api/v1/credential", h.PutCredential)
	mux.HandleFunc("DELETE /api/v1/credential", h.DeleteCredential)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// RegisterMetricsRoute exposes gatherer in the Prometheus text format at /metrics.
func RegisterMetricsRoute(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Ask answers one question. The key comes from the api-key header when
// present, otherwise from the stored credential. The body must be sent as
// application/json so a cross-site form post cannot reach the stored key.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	secret := r.Header.Get("api-key")
	if strings.TrimSpace(secret) == "" {
		secret = h.session.State().Credential
	}

	answer, err := h.askSvc.Submit(r.Context(), req.Question, secret)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toAskResponse(answer))
	case errors.Is(err, application.ErrPreconditionSkip):
		writeError(w, http.StatusBadRequest, "question and api key are required")
	default:
		h.logger.Error("ask failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusBadGateway, model.UserMessage(err))
	}
}

// GetCredential reports whether an API key is stored.
func (h *Handler) GetCredential(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CredentialResponse{Configured: h.session.State().HasCredential()})
}

// PutCredential stores the API key. A blank key removes it.
func (h *Handler) PutCredential(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var req CredentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.session.SetKey(r.Context(), req.APIKey)
	if err != nil {
		h.logger.Error("failed to save credential", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CredentialResponse{Configured: state.HasCredential()})
}

// DeleteCredential removes the stored API key.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if _, err := h.session.SetKey(r.Context(), ""); err != nil {
		h.logger.Error("failed to clear credential", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
