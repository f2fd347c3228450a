package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agendacitas/agenda/internal/model"
)

const pgAppointmentColumns = `id, nombre, COALESCE(telefono, ''), lugar, fecha, hora`

// CreateAppointment inserts a new appointment.
// A second booking of the same (date, time) fails with ErrSlotTaken.
func (r *Postgres) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO citas (id, nombre, telefono, lugar, fecha, hora)
		VALUES ($1, $2, $3, $4, $5::date, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.Name,
		appt.Phone,
		appt.Place,
		appt.Date,
		appt.Time,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

// UpdateAppointment overwrites every field of an appointment.
// Updating a missing id is a no-op.
func (r *Postgres) UpdateAppointment(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE citas
		SET nombre = $2, telefono = $3, lugar = $4, fecha = $5::date, hora = $6
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.Name,
		appt.Phone,
		appt.Place,
		appt.Date,
		appt.Time,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	return nil
}

// DeleteAppointment removes an appointment. Deleting a missing id is a no-op.
func (r *Postgres) DeleteAppointment(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM citas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// SlotTaken reports whether another appointment occupies (date, slot).
// excludeID, when set, ignores that appointment.
func (r *Postgres) SlotTaken(ctx context.Context, date, slot, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM citas WHERE fecha = $1::date AND hora = $2 AND id <> $3)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, date, slot, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return exists, nil
}

// ListAppointmentsByDate returns the appointments of a day ordered by time.
func (r *Postgres) ListAppointmentsByDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	query := `SELECT ` + pgAppointmentColumns + ` FROM citas WHERE fecha = $1::date ORDER BY hora`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return r.collectAppointments(rows)
}

// ListAppointmentsBetween returns appointments in [start, end] ordered by date and time.
func (r *Postgres) ListAppointmentsBetween(ctx context.Context, start, end string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + pgAppointmentColumns + `
		FROM citas
		WHERE fecha BETWEEN $1::date AND $2::date
		ORDER BY fecha, hora
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return r.collectAppointments(rows)
}

// CountAppointmentsBetween returns per-day totals for [start, end].
func (r *Postgres) CountAppointmentsBetween(ctx context.Context, start, end string) (map[string]int, error) {
	query := `
		SELECT fecha, COUNT(*)
		FROM citas
		WHERE fecha BETWEEN $1::date AND $2::date
		GROUP BY fecha
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			day   time.Time
			total int
		)
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		key, err := NormalizeDate(day)
		if err != nil {
			return nil, err
		}
		counts[key] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}

	return counts, nil
}

// SearchAppointments matches term as a substring of name or phone.
func (r *Postgres) SearchAppointments(ctx context.Context, term string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + pgAppointmentColumns + `
		FROM citas
		WHERE nombre LIKE $1 ESCAPE '\' OR telefono LIKE $1 ESCAPE '\'
		ORDER BY fecha, hora
	`

	rows, err := r.pool.Query(ctx, query, likePattern(term))
	if err != nil {
		return nil, fmt.Errorf("failed to search appointments: %w", err)
	}
	return r.collectAppointments(rows)
}

func (r *Postgres) collectAppointments(rows pgx.Rows) ([]*model.Appointment, error) {
	defer rows.Close()

	appts := make([]*model.Appointment, 0)
	for rows.Next() {
		var (
			a   model.Appointment
			day time.Time
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &a.Place, &day, &a.Time); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		date, err := NormalizeDate(day)
		if err != nil {
			return nil, err
		}
		a.Date = date
		appts = append(appts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appts, nil
}
