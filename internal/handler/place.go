package handler

import (
	"errors"
	"net/http"

	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/view"
)

const (
	msgPlaceExists = "El lugar ya existe en el catálogo."
	msgPlaceAdded  = "Lugar agregado correctamente."
)

// PlaceHandler serves the place catalog.
type PlaceHandler struct {
	*Handler
	svc *service.PlaceService
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(base *Handler, svc *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{Handler: base, svc: svc}
}

// List handles GET /lugares.
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderPlaces(w, r, http.StatusOK, view.Page{}, "")
}

// Add handles POST /lugares.
func (h *PlaceHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPlaces(w, r, http.StatusBadRequest, view.Page{Error: msgBadForm}, "")
		return
	}
	name := r.PostFormValue("nombre")

	_, err := h.svc.Add(r.Context(), name)
	switch {
	case err == nil:
		h.renderPlaces(w, r, http.StatusOK, view.Page{Success: msgPlaceAdded}, "")
	case errors.Is(err, service.ErrPlaceExists):
		h.renderPlaces(w, r, http.StatusConflict, view.Page{Error: msgPlaceExists}, name)
	default:
		if msg, ok := validationMessage(err); ok {
			h.renderPlaces(w, r, http.StatusUnprocessableEntity, view.Page{Error: msg}, name)
			return
		}
		h.internalError(w, r, err)
	}
}

func (h *PlaceHandler) renderPlaces(w http.ResponseWriter, r *http.Request, status int, page view.Page, name string) {
	places, err := h.svc.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	page.Title = "Lugares"
	page.Data = view.PlacesData{Places: places, Name: name}
	h.render(w, r, status, view.PagePlaces, page)
}
