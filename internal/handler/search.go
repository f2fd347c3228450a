package handler

import (
	"net/http"
	"strings"

	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/view"
)

// SearchHandler serves appointment search.
type SearchHandler struct {
	*Handler
	svc *service.AppointmentService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(base *Handler, svc *service.AppointmentService) *SearchHandler {
	return &SearchHandler{Handler: base, svc: svc}
}

// Search handles GET /buscar?q=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	appts, err := h.svc.Search(r.Context(), term)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageSearch, view.Page{
		Title: "Buscar citas",
		Data:  view.SearchData{Term: term, Appointments: appts},
	})
}
