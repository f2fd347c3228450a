package service

import (
	"strings"
	"unicode/utf8"

	"github.com/agendacitas/agenda/internal/calendar"
)

const (
	maxNameLength  = 120
	maxPhoneLength = 40
	maxPlaceLength = 120
)

// AppointmentInput is an already-validated set of appointment fields.
// The zero value is not valid; build one with NewAppointmentInput.
type AppointmentInput struct {
	name  string
	phone string
	place string
	date  string
	slot  string
}

// NewAppointmentInput trims and validates raw form values.
// Name, place, date and slot are required; phone is optional.
func NewAppointmentInput(name, phone, place, date, slot string) (AppointmentInput, error) {
	in := AppointmentInput{
		name:  strings.TrimSpace(name),
		phone: strings.TrimSpace(phone),
		place: strings.TrimSpace(place),
		date:  strings.TrimSpace(date),
		slot:  strings.TrimSpace(slot),
	}

	switch {
	case in.name == "":
		return AppointmentInput{}, invalid("nombre", "El nombre es obligatorio.")
	case utf8.RuneCountInString(in.name) > maxNameLength:
		return AppointmentInput{}, invalid("nombre", "El nombre es demasiado largo.")
	case utf8.RuneCountInString(in.phone) > maxPhoneLength:
		return AppointmentInput{}, invalid("telefono", "El teléfono es demasiado largo.")
	case in.place == "":
		return AppointmentInput{}, invalid("lugar", "El lugar es obligatorio.")
	case utf8.RuneCountInString(in.place) > maxPlaceLength:
		return AppointmentInput{}, invalid("lugar", "El lugar es demasiado largo.")
	}

	if _, err := calendar.ParseDate(in.date); err != nil {
		return AppointmentInput{}, invalid("fecha", "La fecha no es válida.")
	}
	if !calendar.IsSlot(in.slot) {
		return AppointmentInput{}, invalid("hora", "El horario no es válido.")
	}

	return in, nil
}

// Name returns the client name.
func (in AppointmentInput) Name() string { return in.name }

// Phone returns the optional phone number.
func (in AppointmentInput) Phone() string { return in.phone }

// Place returns the place name.
func (in AppointmentInput) Place() string { return in.place }

// Date returns the canonical YYYY-MM-DD date.
func (in AppointmentInput) Date() string { return in.date }

// Slot returns the HH:MM time slot.
func (in AppointmentInput) Slot() string { return in.slot }
