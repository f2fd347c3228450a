// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/agendacitas/agenda/internal/auth"
	"github.com/agendacitas/agenda/internal/middleware"
	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/view"
)

// User-facing messages shared by several handlers.
const (
	msgInternal    = "Ocurrió un error inesperado. Intenta de nuevo más tarde."
	msgBadForm     = "No se pudo leer el formulario."
	msgNotFound    = "La página que buscas no existe."
	msgNotAllowed  = "Método no permitido."
	msgInvalidDate = "La fecha no es válida."
)

// Handler holds what every page handler needs: the renderer and a logger.
type Handler struct {
	views  *view.Renderer
	logger *slog.Logger
}

// New creates a new Handler instance.
func New(views *view.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{views: views, logger: logger}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, msgNotFound, "/")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, msgNotAllowed, "/")
}

// render fills the per-request fields of page and writes it.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page) {
	if s := auth.SessionFromContext(r.Context()); s != nil {
		page.Username = s.Username
	}
	page.CSRF = csrf.TemplateField(r)

	if err := h.views.Render(w, status, name, page); err != nil {
		h.logger.Error("render failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, msgInternal, http.StatusInternalServerError)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message, back string) {
	h.render(w, r, status, view.PageError, view.Page{
		Title: "Error",
		Error: message,
		Data:  view.ErrorData{Back: back},
	})
}

// internalError logs the real error and shows a generic message.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []any{
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	}
	var serr *service.StorageError
	if errors.As(err, &serr) {
		attrs = append(attrs, slog.String("op", serr.Op))
	}
	h.logger.Error("internal_error", attrs...)

	h.renderError(w, r, http.StatusInternalServerError, msgInternal, "/")
}

// validationMessage returns the user-facing text of a validation error.
func validationMessage(err error) (string, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
