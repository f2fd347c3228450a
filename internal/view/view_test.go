package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agendacitas/agenda/internal/calendar"
	"github.com/agendacitas/agenda/internal/model"
)

func TestMonthName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "enero"},
		{time.June, "junio"},
		{time.December, "diciembre"},
		{time.Month(0), ""},
		{time.Month(13), ""},
	}

	for _, tt := range tests {
		if got := MonthName(tt.month); got != tt.want {
			t.Errorf("MonthName(%d) = %q, want %q", tt.month, got, tt.want)
		}
	}
}

func TestLongDate(t *testing.T) {
	t.Parallel()

	if got := LongDate("2025-06-10"); got != "martes 10 de junio de 2025" {
		t.Errorf("LongDate = %q", got)
	}
	if got := LongDate("not-a-date"); got != "not-a-date" {
		t.Errorf("LongDate should pass through invalid input, got %q", got)
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func render(t *testing.T, r *Renderer, status int, name string, page Page) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := r.Render(rec, status, name, page); err != nil {
		t.Fatalf("Render(%s): %v", name, err)
	}
	return rec
}

func TestRender_EveryPage(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	month := calendar.Month{Year: 2025, Month: time.June}
	appts := []*model.Appointment{
		{ID: "a1", Name: "Ana Pérez", Phone: "5551234567", Place: "Lomas", Date: "2025-06-10", Time: "09:00"},
	}
	places := []*model.Place{{ID: "p1", Name: "Lomas"}, {ID: "p2", Name: "Valle Alto"}}

	tests := []struct {
		name string
		data any
		want []string
	}{
		{PageLogin, nil, []string{`action="/login"`, `name="password"`}},
		{PageCalendar, CalendarData{
			Month:  month,
			Weeks:  month.Grid(),
			Counts: map[string]int{"2025-06-10": 3},
			Today:  "2025-06-10",
		}, []string{"junio 2025", `href="/citas?fecha=2025-06-10"`, `title="3 cita(s)"`, "month=5", "month=7"}},
		{PageAppointments, DayData{
			Date:         "2025-06-10",
			Appointments: appts,
			Slots:        calendar.TimeSlots(),
			Places:       places,
		}, []string{"martes 10 de junio de 2025", "Ana Pérez", `action="/citas/a1/editar"`, `action="/citas/a1/eliminar"`, "19:30"}},
		{PagePlaces, PlacesData{Places: places}, []string{"Valle Alto", `action="/lugares"`}},
		{PageSearch, SearchData{Term: "ana", Appointments: appts}, []string{`value="ana"`, "2025-06-10"}},
		{PageChangePassword, nil, []string{`name="actual"`, `name="nueva"`}},
		{PageError, ErrorData{Back: "/"}, []string{"Algo salió mal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := render(t, r, http.StatusOK, tt.name, Page{Username: "admin", Data: tt.data})
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("%s: body missing %q", tt.name, want)
				}
			}
		})
	}
}

func TestRender_BannersAndNav(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)

	rec := render(t, r, http.StatusConflict, PageChangePassword, Page{
		Username: "admin",
		Error:    "La contraseña actual no es correcta.",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "banner-error") || !strings.Contains(body, "La contraseña actual no es correcta.") {
		t.Error("error banner missing")
	}
	if !strings.Contains(body, `href="/logout"`) {
		t.Error("nav missing for signed-in user")
	}

	rec = render(t, r, http.StatusOK, PageLogin, Page{})
	if strings.Contains(rec.Body.String(), `href="/logout"`) {
		t.Error("nav rendered for anonymous user")
	}
}

func TestRender_EscapesUserInput(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	rec := render(t, r, http.StatusOK, PageSearch, Page{
		Username: "admin",
		Data:     SearchData{Term: "<script>alert(1)</script>"},
	})
	if strings.Contains(rec.Body.String(), "<script>alert(1)</script>") {
		t.Error("search term rendered unescaped")
	}
}

func TestRender_UnknownPage(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	if err := r.Render(httptest.NewRecorder(), http.StatusOK, "missing", Page{}); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".calendar") {
		t.Error("stylesheet content missing")
	}
}
