// Package repository provides database access layer.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/agendacitas/agenda/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrPlaceExists    = errors.New("place already exists")
	ErrSlotTaken      = errors.New("slot already booked")
	ErrUnknownDriver  = errors.New("unknown database driver")
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store is the persistence gateway shared by the PostgreSQL and SQLite
// backends. All dates cross this boundary as canonical YYYY-MM-DD strings.
type Store interface {
	Ping(ctx context.Context) error
	Close()
	Migrate(ctx context.Context) error

	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, username, password string) error

	CountPlaces(ctx context.Context) (int, error)
	CreatePlace(ctx context.Context, place *model.Place) error
	ListPlaces(ctx context.Context) ([]*model.Place, error)

	CreateAppointment(ctx context.Context, appt *model.Appointment) error
	UpdateAppointment(ctx context.Context, appt *model.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error
	SlotTaken(ctx context.Context, date, slot, excludeID string) (bool, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]*model.Appointment, error)
	ListAppointmentsBetween(ctx context.Context, start, end string) ([]*model.Appointment, error)
	CountAppointmentsBetween(ctx context.Context, start, end string) (map[string]int, error)
	SearchAppointments(ctx context.Context, term string) ([]*model.Appointment, error)
}

// Options selects and configures a backend.
type Options struct {
	Driver      string
	DatabaseURL string
	Path        string
	MaxConns    int32
}

// Open connects to the configured backend. The schema is not touched;
// call Migrate once at startup.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres:
		return NewPostgres(ctx, opts.DatabaseURL, opts.MaxConns)
	case DriverSQLite, "":
		return NewSQLite(ctx, opts.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

func loadSchema(driver string) (string, error) {
	data, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return "", fmt.Errorf("read %s schema: %w", driver, err)
	}
	return string(data), nil
}

// likePattern turns a search term into a LIKE pattern that matches it as a
// literal substring. Use with ESCAPE '\'.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
