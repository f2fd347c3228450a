package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/agendacitas/agenda/internal/calendar"
	"github.com/agendacitas/agenda/internal/metrics"
	"github.com/agendacitas/agenda/internal/model"
	"github.com/agendacitas/agenda/internal/repository"
)

// AppointmentService handles appointment business logic.
type AppointmentService struct {
	store   repository.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(store repository.Store, recorder metrics.Recorder, logger *slog.Logger) *AppointmentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentService{
		store:   store,
		metrics: recorder,
		logger:  logger,
	}
}

// ListByDate returns the appointments of one day ordered by time.
func (s *AppointmentService) ListByDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, invalid("fecha", "La fecha no es válida.")
	}

	appts, err := s.store.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return nil, storageError("list appointments by date", err)
	}
	return appts, nil
}

// CountByDateRange returns per-day totals for [start, end], keyed by
// canonical YYYY-MM-DD dates.
func (s *AppointmentService) CountByDateRange(ctx context.Context, start, end string) (map[string]int, error) {
	counts, err := s.store.CountAppointmentsBetween(ctx, start, end)
	if err != nil {
		return nil, storageError("count appointments", err)
	}
	return counts, nil
}

// MonthCounts returns per-day totals for a calendar month.
func (s *AppointmentService) MonthCounts(ctx context.Context, m calendar.Month) (map[string]int, error) {
	first, last := m.Range()
	return s.CountByDateRange(ctx, first, last)
}

// ListBetween returns appointments in [start, end] ordered by date and time.
func (s *AppointmentService) ListBetween(ctx context.Context, start, end string) ([]*model.Appointment, error) {
	appts, err := s.store.ListAppointmentsBetween(ctx, start, end)
	if err != nil {
		return nil, storageError("list appointments", err)
	}
	return appts, nil
}

// Create books a new appointment. The slot check runs before the insert;
// a concurrent booking that slips past it is rejected by the store's
// unique index and reported the same way.
func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) (*model.Appointment, error) {
	taken, err := s.store.SlotTaken(ctx, in.Date(), in.Slot(), "")
	if err != nil {
		return nil, storageError("check slot", err)
	}
	if taken {
		s.metrics.IncAppointmentConflict()
		return nil, ErrSlotTaken
	}

	appt := &model.Appointment{
		ID:    ulid.Make().String(),
		Name:  in.Name(),
		Phone: in.Phone(),
		Place: in.Place(),
		Date:  in.Date(),
		Time:  in.Slot(),
	}

	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.metrics.IncAppointmentConflict()
			return nil, ErrSlotTaken
		}
		return nil, storageError("create appointment", err)
	}

	s.metrics.IncAppointmentCreated()
	s.logger.Info("appointment_created",
		slog.String("appointment_id", appt.ID),
		slog.String("date", appt.Date),
		slog.String("time", appt.Time),
	)

	return appt, nil
}

// Update overwrites an appointment. Its own current slot never counts as a
// conflict. Updating an id that does not exist changes nothing.
func (s *AppointmentService) Update(ctx context.Context, id string, in AppointmentInput) (*model.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("id", "La cita no es válida.")
	}

	taken, err := s.store.SlotTaken(ctx, in.Date(), in.Slot(), id)
	if err != nil {
		return nil, storageError("check slot", err)
	}
	if taken {
		s.metrics.IncAppointmentConflict()
		return nil, ErrSlotTaken
	}

	appt := &model.Appointment{
		ID:    id,
		Name:  in.Name(),
		Phone: in.Phone(),
		Place: in.Place(),
		Date:  in.Date(),
		Time:  in.Slot(),
	}

	if err := s.store.UpdateAppointment(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.metrics.IncAppointmentConflict()
			return nil, ErrSlotTaken
		}
		return nil, storageError("update appointment", err)
	}

	s.metrics.IncAppointmentUpdated()
	s.logger.Info("appointment_updated",
		slog.String("appointment_id", appt.ID),
		slog.String("date", appt.Date),
		slog.String("time", appt.Time),
	)

	return appt, nil
}

// Delete removes an appointment. Deleting a missing id succeeds.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return storageError("delete appointment", err)
	}

	s.metrics.IncAppointmentDeleted()
	s.logger.Info("appointment_deleted", slog.String("appointment_id", id))
	return nil
}

// Search matches term against name and phone, ordered by date and time.
// A blank term returns no results without querying the store.
func (s *AppointmentService) Search(ctx context.Context, term string) ([]*model.Appointment, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*model.Appointment{}, nil
	}

	appts, err := s.store.SearchAppointments(ctx, term)
	if err != nil {
		return nil, storageError("search appointments", err)
	}
	return appts, nil
}
