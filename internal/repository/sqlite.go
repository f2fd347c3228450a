package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/agendacitas/agenda/internal/model"
)

// SQLite is the SQLite implementation of Store. Dates are stored as text.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (or creates) a SQLite database. path may be a file name
// or a "file:" URI such as "file:test?mode=memory&cache=shared".
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "citas.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY
	// between our own goroutines and keeps in-memory databases alive.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// journal_mode may not be supported for in-memory databases.
	_, _ = db.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Migrate creates the tables and indexes if they do not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	schema, err := loadSchema(DriverSQLite)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() {
	_ = s.db.Close()
}

// DB returns the underlying handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// CountUsers returns the number of stored users.
func (s *SQLite) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// CreateUser inserts a new user.
func (s *SQLite) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usuarios (id, username, password, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.Password, user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var (
		user      model.User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password, created_at FROM usuarios WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.Password, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		user.CreatedAt = t
	}

	return &user, nil
}

// UpdateUserPassword overwrites the stored credential.
func (s *SQLite) UpdateUserPassword(ctx context.Context, username, password string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE usuarios SET password = ? WHERE username = ?`,
		password, username,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountPlaces returns the size of the catalog.
func (s *SQLite) CountPlaces(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lugares`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return n, nil
}

// CreatePlace inserts a catalog entry.
func (s *SQLite) CreatePlace(ctx context.Context, place *model.Place) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lugares (id, nombre) VALUES (?, ?)`,
		place.ID, place.Name,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrPlaceExists
		}
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

// ListPlaces returns the catalog ordered by name.
func (s *SQLite) ListPlaces(ctx context.Context) ([]*model.Place, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nombre FROM lugares ORDER BY nombre`)
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

// isSQLiteUnique checks if the error is a SQLite UNIQUE constraint failure.
func isSQLiteUnique(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
