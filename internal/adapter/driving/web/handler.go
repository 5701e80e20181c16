// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	vm "github.com/ericfisherdev/oncoassist/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/oncoassist/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/oncoassist/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/oncoassist/internal/application"
)

// maxFormBytes bounds the size of a posted form.
const maxFormBytes = 64 << 10

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	session *application.Session
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(session *application.Session, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		logger:  logger,
	}
}

// Page renders the question page for the current session state.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)
	h.render(w, r, http.StatusOK, toPageViewModel(h.session.State(), token))
}

// SaveKey stores the posted API key. An empty key, or the forget action,
// removes the stored key.
func (h *Handler) SaveKey(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	value := r.FormValue("api_key")
	if r.FormValue("action") == "forget" {
		value = ""
	}

	if _, err := h.session.SetKey(r.Context(), value); err != nil {
		h.logger.Error("failed to save api key", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Ask submits the posted question and renders the outcome directly. The
// request blocks until the upstream call completes.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	state, err := h.session.Ask(r.Context(), r.FormValue("question"))
	page := toPageViewModel(state, csrfToken(w, r))

	switch {
	case errors.Is(err, application.ErrSubmitInFlight):
		page.Notice = "A question is already being answered. Please wait for it to finish."
		h.render(w, r, http.StatusConflict, page)
	default:
		// A precondition skip re-renders silently, as does a finished request
		// whose failure is carried in page.Error.
		h.render(w, r, http.StatusOK, page)
	}
}

// Clear empties the question and answer, then redirects to the page.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	h.session.Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseForm bounds and parses the form body and validates the CSRF token.
// It writes the error response and returns false on failure.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		h.logger.Warn("csrf validation failed", "path", r.URL.Path)
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.PageViewModel) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	layout := templates.Layout(page.Title, pages.Ask(page))
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "error", err)
	}
}
