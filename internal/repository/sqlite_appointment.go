package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agendacitas/agenda/internal/model"
)

const sqliteAppointmentColumns = `id, nombre, COALESCE(telefono, ''), lugar, fecha, hora`

// CreateAppointment inserts a new appointment.
func (s *SQLite) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO citas (id, nombre, telefono, lugar, fecha, hora) VALUES (?, ?, ?, ?, ?, ?)`,
		appt.ID, appt.Name, appt.Phone, appt.Place, appt.Date, appt.Time,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// UpdateAppointment overwrites every field of an appointment.
func (s *SQLite) UpdateAppointment(ctx context.Context, appt *model.Appointment) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE citas SET nombre = ?, telefono = ?, lugar = ?, fecha = ?, hora = ? WHERE id = ?`,
		appt.Name, appt.Phone, appt.Place, appt.Date, appt.Time, appt.ID,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

// DeleteAppointment removes an appointment. Deleting a missing id is a no-op.
func (s *SQLite) DeleteAppointment(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM citas WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// SlotTaken reports whether another appointment occupies (date, slot).
func (s *SQLite) SlotTaken(ctx context.Context, date, slot, excludeID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM citas WHERE fecha = ? AND hora = ? AND id <> ?)`,
		date, slot, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return exists, nil
}

// ListAppointmentsByDate returns the appointments of a day ordered by time.
func (s *SQLite) ListAppointmentsByDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteAppointmentColumns+` FROM citas WHERE fecha = ? ORDER BY hora`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return collectSQLiteAppointments(rows)
}

// ListAppointmentsBetween returns appointments in [start, end] ordered by date and time.
func (s *SQLite) ListAppointmentsBetween(ctx context.Context, start, end string) ([]*model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteAppointmentColumns+` FROM citas WHERE fecha BETWEEN ? AND ? ORDER BY fecha, hora`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return collectSQLiteAppointments(rows)
}

// CountAppointmentsBetween returns per-day totals for [start, end].
func (s *SQLite) CountAppointmentsBetween(ctx context.Context, start, end string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fecha, COUNT(*) FROM citas WHERE fecha BETWEEN ? AND ? GROUP BY fecha`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			day   any
			total int
		)
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		key, err := NormalizeDate(day)
		if err != nil {
			return nil, err
		}
		counts[key] += total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}

	return counts, nil
}

// SearchAppointments matches term as a substring of name or phone.
// SQLite LIKE is case-insensitive for ASCII.
func (s *SQLite) SearchAppointments(ctx context.Context, term string) ([]*model.Appointment, error) {
	pattern := likePattern(term)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteAppointmentColumns+` FROM citas
		 WHERE nombre LIKE ? ESCAPE '\' OR telefono LIKE ? ESCAPE '\'
		 ORDER BY fecha, hora`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search appointments: %w", err)
	}
	return collectSQLiteAppointments(rows)
}

func collectSQLiteAppointments(rows *sql.Rows) ([]*model.Appointment, error) {
	defer rows.Close()

	appts := make([]*model.Appointment, 0)
	for rows.Next() {
		var (
			a   model.Appointment
			day any
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
