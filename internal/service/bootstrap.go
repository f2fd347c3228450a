package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agendacitas/agenda/internal/auth"
	"github.com/agendacitas/agenda/internal/model"
	"github.com/agendacitas/agenda/internal/repository"
)

// DefaultPlaces seeds an empty catalog.
var DefaultPlaces = []string{"Valle Alto", "Lomas"}

// BootstrapOptions configures first-run seeding.
type BootstrapOptions struct {
	Username string
	Password string
	Places   []string
}

// Bootstrap seeds the default user when no user exists and the default
// places when the catalog is empty. Existing rows are never touched.
func Bootstrap(ctx context.Context, store repository.Store, opts BootstrapOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Places == nil {
		opts.Places = DefaultPlaces
	}

	users, err := store.CountUsers(ctx)
	if err != nil {
		return storageError("count users", err)
	}
	if users == 0 {
		username := strings.TrimSpace(opts.Username)
		if username == "" || opts.Password == "" {
			return fmt.Errorf("bootstrap user: %w", invalid("usuario", "credentials are required"))
		}

		hash, err := auth.HashPassword(opts.Password)
		if err != nil {
			return fmt.Errorf("bootstrap user: %w", err)
		}

		user := &model.User{
			ID:        ulid.Make().String(),
			Username:  username,
			Password:  hash,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateUser(ctx, user); err != nil && !errors.Is(err, repository.ErrUsernameExists) {
			return storageError("create default user", err)
		}
		logger.Info("default_user_created", slog.String("username", username))
	}

	places, err := store.CountPlaces(ctx)
	if err != nil {
		return storageError("count places", err)
	}
	if places == 0 {
		for _, name := range opts.Places {
			place := &model.Place{ID: ulid.Make().String(), Name: name}
			if err := store.CreatePlace(ctx, place); err != nil && !errors.Is(err, repository.ErrPlaceExists) {
				return storageError("create default place", err)
			}
		}
		logger.Info("default_places_created", slog.Int("count", len(opts.Places)))
	}

	return nil
}
