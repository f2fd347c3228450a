package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agendacitas/agenda/internal/calendar"
	"github.com/agendacitas/agenda/internal/ics"
	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/view"
)

// CalendarHandler serves the month view and its iCalendar export.
type CalendarHandler struct {
	*Handler
	svc      *service.AppointmentService
	exporter *ics.Exporter
	loc      *time.Location
	now      func() time.Time
}

// NewCalendarHandler creates a new CalendarHandler. "Today" and exported
// event times are taken in loc (nil means UTC).
func NewCalendarHandler(base *Handler, svc *service.AppointmentService, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{
		Handler:  base,
		svc:      svc,
		exporter: ics.NewExporter(loc),
		loc:      loc,
		now:      time.Now,
	}
}

// Month handles GET / and GET /mes?year=&month=. Missing or out-of-range
// parameters fall back to the current month.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.loc)
	m := requestedMonth(r, now)

	counts, err := h.svc.MonthCounts(r.Context(), m)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageCalendar, view.Page{
		Title: fmt.Sprintf("%s %d", view.MonthName(m.Month), m.Year),
		Data: view.CalendarData{
			Month:  m,
			Weeks:  m.Grid(),
			Counts: counts,
			Today:  now.Format(calendar.DateLayout),
		},
	})
}

// Export handles GET /exportar.ics?year=&month=.
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	m := requestedMonth(r, h.now().In(h.loc))

	start, end := m.Range()
	appts, err := h.svc.ListBetween(r.Context(), start, end)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	body, err := h.exporter.Export(fmt.Sprintf("Agenda %s %d", view.MonthName(m.Month), m.Year), appts)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="agenda-%04d-%02d.ics"`, m.Year, int(m.Month)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func requestedMonth(r *http.Request, now time.Time) calendar.Month {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	month, _ := strconv.Atoi(q.Get("month"))
	return calendar.Normalize(year, month, now)
}
