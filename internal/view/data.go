package view

import (
	"github.com/agendacitas/agenda/internal/calendar"
	"github.com/agendacitas/agenda/internal/model"
)

// CalendarData feeds the month view.
type CalendarData struct {
	Month  calendar.Month
	Weeks  []calendar.Week
	Counts map[string]int
	Today  string
}

// AppointmentForm echoes submitted values back after a rejected create.
type AppointmentForm struct {
	Name  string
	Phone string
	Place string
	Time  string
}

// DayData feeds the appointments-of-a-day view.
type DayData struct {
	Date         string
	Appointments []*model.Appointment
	Slots        []string
	Places       []*model.Place
	Form         AppointmentForm
}

// PlacesData feeds the catalog view.
type PlacesData struct {
	Places []*model.Place
	Name   string
}

// SearchData feeds the search view.
type SearchData struct {
	Term         string
	Appointments []*model.Appointment
}

// ErrorData feeds the generic error page.
type ErrorData struct {
	Back string
}
