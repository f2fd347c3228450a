package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/agendacitas/agenda/internal/metrics"
	"github.com/agendacitas/agenda/internal/model"
	"github.com/agendacitas/agenda/internal/repository"
)

// PlaceService manages the catalog of places.
type PlaceService struct {
	store   repository.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(store repository.Store, recorder metrics.Recorder, logger *slog.Logger) *PlaceService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaceService{store: store, metrics: recorder, logger: logger}
}

// List returns the catalog ordered by name.
func (s *PlaceService) List(ctx context.Context) ([]*model.Place, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, storageError("list places", err)
	}
	return places, nil
}

// Add inserts a place. The name is trimmed; blank names are rejected
// before touching the store.
func (s *PlaceService) Add(ctx context.Context, name string) (*model.Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("nombre", "El nombre del lugar es obligatorio.")
	}
	if utf8.RuneCountInString(name) > maxPlaceLength {
		return nil, invalid("nombre", "El nombre del lugar es demasiado largo.")
	}

	place := &model.Place{ID: ulid.Make().String(), Name: name}
	if err := s.store.CreatePlace(ctx, place); err != nil {
		if errors.Is(err, repository.ErrPlaceExists) {
			return nil, ErrPlaceExists
		}
		return nil, storageError("create place", err)
	}

	s.metrics.IncPlaceCreated()
	s.logger.Info("place_created", slog.String("place_id", place.ID), slog.String("name", place.Name))
	return place, nil
}
