package repository

import (
	"context"
	"fmt"

	"github.com/agendacitas/agenda/internal/model"
)

// CountPlaces returns the size of the catalog.
func (r *Postgres) CountPlaces(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lugares`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return n, nil
}

// CreatePlace inserts a catalog entry.
func (r *Postgres) CreatePlace(ctx context.Context, place *model.Place) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lugares (id, nombre) VALUES ($1, $2)`,
		place.ID, place.Name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPlaceExists
		}
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

// ListPlaces returns the catalog ordered by name.
func (r *Postgres) ListPlaces(ctx context.Context) ([]*model.Place, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nombre FROM lugares ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	places := make([]*model.Place, 0)
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}

	return places, nil
}
