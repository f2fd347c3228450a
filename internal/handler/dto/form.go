// Package dto maps submitted HTML forms to service inputs and back to view
// data.
package dto

import (
	"net/http"

	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/view"
)

// AppointmentForm holds the raw fields of the create and edit forms.
type AppointmentForm struct {
	Name  string
	Phone string
	Place string
	Date  string
	Time  string
}

// ParseAppointmentForm reads the appointment fields from a POST body.
func ParseAppointmentForm(r *http.Request) (AppointmentForm, error) {
	if err := r.ParseForm(); err != nil {
		return AppointmentForm{}, err
	}
	return AppointmentForm{
		Name:  r.PostFormValue("nombre"),
		Phone: r.PostFormValue("telefono"),
		Place: r.PostFormValue("lugar"),
		Date:  r.PostFormValue("fecha"),
		Time:  r.PostFormValue("hora"),
	}, nil
}

// Input validates the form. The error is a *service.ValidationError.
func (f AppointmentForm) Input() (service.AppointmentInput, error) {
	return service.NewAppointmentInput(f.Name, f.Phone, f.Place, f.Date, f.Time)
}

// View returns the values to echo back into a re-rendered form.
func (f AppointmentForm) View() view.AppointmentForm {
	return view.AppointmentForm{
		Name:  f.Name,
		Phone: f.Phone,
		Place: f.Place,
		Time:  f.Time,
	}
}

// LoginForm holds the login credentials.
type LoginForm struct {
	Username string
	Password string
}

// ParseLoginForm reads the login form. The username is not trimmed.
func ParseLoginForm(r *http.Request) (LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return LoginForm{}, err
	}
	return LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}, nil
}

// PasswordForm holds the change-password fields.
type PasswordForm struct {
	Current string
	New     string
}

// ParsePasswordForm reads the change-password form.
func ParsePasswordForm(r *http.Request) (PasswordForm, error) {
	if err := r.ParseForm(); err != nil {
		return PasswordForm{}, err
	}
	return PasswordForm{
		Current: r.PostFormValue("actual"),
		New:     r.PostFormValue("nueva"),
	}, nil
}
