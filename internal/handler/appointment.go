package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agendacitas/agenda/internal/calendar"
	"github.com/agendacitas/agenda/internal/handler/dto"
	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/view"
)

// AppointmentHandler serves the day view and the appointment mutations.
type AppointmentHandler struct {
	*Handler
	appts  *service.AppointmentService
	places *service.PlaceService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(base *Handler, appts *service.AppointmentService, places *service.PlaceService) *AppointmentHandler {
	return &AppointmentHandler{Handler: base, appts: appts, places: places}
}

// Day handles GET /citas?fecha=YYYY-MM-DD. Without fecha it goes back to
// the calendar.
func (h *AppointmentHandler) Day(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("fecha"))
	if date == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.renderDay(w, r, http.StatusOK, date, "", view.AppointmentForm{})
}

// Create handles POST /citas.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := dto.ParseAppointmentForm(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, msgBadForm, "/")
		return
	}

	in, err := form.Input()
	if err != nil {
		h.rejected(w, r, form, err, true)
		return
	}

	appt, err := h.appts.Create(r.Context(), in)
	if err != nil {
		h.rejected(w, r, form, err, true)
		return
	}

	http.Redirect(w, r, dayURL(appt.Date), http.StatusSeeOther)
}

// Update handles POST /citas/{id}/editar.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, err := dto.ParseAppointmentForm(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, msgBadForm, "/")
		return
	}

	in, err := form.Input()
	if err != nil {
		h.rejected(w, r, form, err, false)
		return
	}

	appt, err := h.appts.Update(r.Context(), id, in)
	if err != nil {
		h.rejected(w, r, form, err, false)
		return
	}

	http.Redirect(w, r, dayURL(appt.Date), http.StatusSeeOther)
}

// Delete handles POST /citas/{id}/eliminar. The hidden fecha field picks
// the day to return to.
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, msgBadForm, "/")
		return
	}

	if err := h.appts.Delete(r.Context(), id); err != nil {
		h.internalError(w, r, err)
		return
	}

	date := strings.TrimSpace(r.PostFormValue("fecha"))
	if _, err := calendar.ParseDate(date); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, dayURL(date), http.StatusSeeOther)
}

// rejected answers a create or edit that failed validation or hit a taken
// slot by re-rendering the day with a banner. echo keeps the submitted
// values in the new-appointment form.
func (h *AppointmentHandler) rejected(w http.ResponseWriter, r *http.Request, form dto.AppointmentForm, err error, echo bool) {
	var (
		status  int
		message string
	)

	if msg, ok := validationMessage(err); ok {
		status, message = http.StatusUnprocessableEntity, msg
	} else if errors.Is(err, service.ErrSlotTaken) {
		status = http.StatusConflict
		message = fmt.Sprintf("Ya existe una cita registrada el %s a las %s.",
			strings.TrimSpace(form.Date), strings.TrimSpace(form.Time))
	} else {
		h.internalError(w, r, err)
		return
	}

	date := strings.TrimSpace(form.Date)
	if _, perr := calendar.ParseDate(date); perr != nil {
		h.renderError(w, r, status, message, "/")
		return
	}

	var values view.AppointmentForm
	if echo {
		values = form.View()
	}
	h.renderDay(w, r, status, date, message, values)
}

func (h *AppointmentHandler) renderDay(w http.ResponseWriter, r *http.Request, status int, date, banner string, form view.AppointmentForm) {
	appts, err := h.appts.ListByDate(r.Context(), date)
	if err != nil {
		if _, ok := validationMessage(err); ok {
			h.renderError(w, r, http.StatusUnprocessableEntity, msgInvalidDate, "/")
			return
		}
		h.internalError(w, r, err)
		return
	}

	places, err := h.places.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, status, view.PageAppointments, view.Page{
		Title: "Citas del " + date,
		Error: banner,
		Data: view.DayData{
			Date:         date,
			Appointments: appts,
			Slots:        calendar.TimeSlots(),
			Places:       places,
			Form:         form,
		},
	})
}

func dayURL(date string) string {
	return "/citas?fecha=" + url.QueryEscape(date)
}
