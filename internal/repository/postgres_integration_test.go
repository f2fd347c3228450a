//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agendacitas/agenda/internal/model"
	"github.com/agendacitas/agenda/internal/testutil"
)

// ============================================================================
// PostgreSQL Store Integration Tests
// ============================================================================

func newPostgresTestEnv(t *testing.T) (context.Context, *Postgres) {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	store, err := NewPostgres(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("NewPostgres failed: %v", err)
	}
	t.Cleanup(store.Close)

	unlock, err := testutil.AcquireDBLock(ctx, store.Pool())
	if err != nil {
		t.Fatalf("AcquireDBLock failed: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release lock: %v", err)
		}
	})

	if err := testutil.ResetSchema(ctx, store.Pool()); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return ctx, store
}

func TestIntegrationPostgres_MigrateIsIdempotent(t *testing.T) {
	ctx, store := newPostgresTestEnv(t)

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestIntegrationPostgres_Users(t *testing.T) {
	ctx, store := newPostgresTestEnv(t)

	user := testutil.NewTestUser(t, "paulina", "secret")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(ctx, testutil.NewTestUser(t, "paulina", "x")); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate CreateUser error = %v, want ErrUsernameExists", err)
	}

	got, err := store.GetUserByUsername(ctx, "paulina")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.Password != "secret" {
		t.Errorf("Password = %q, want secret", got.Password)
	}

	if err := store.UpdateUserPassword(ctx, "nadie", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateUserPassword(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestIntegrationPostgres_Places(t *testing.T) {
	ctx, store := newPostgresTestEnv(t)

	if err := store.CreatePlace(ctx, &model.Place{ID: testutil.UniqueID("lugar"), Name: "Lomas"}); err != nil {
		t.Fatalf("CreatePlace failed: %v", err)
	}
	err := store.CreatePlace(ctx, &model.Place{ID: testutil.UniqueID("lugar"), Name: "Lomas"})
	if !errors.Is(err, ErrPlaceExists) {
		t.Errorf("duplicate CreatePlace error = %v, want ErrPlaceExists", err)
	}
}

func TestIntegrationPostgres_Appointments(t *testing.T) {
	ctx, store := newPostgresTestEnv(t)

	first := testutil.NewTestAppointment(t, "2025-03-10", "09:00")
	if err := store.CreateAppointment(ctx, first); err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	clash := testutil.NewTestAppointment(t, "2025-03-10", "09:00")
	if err := store.CreateAppointment(ctx, clash); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("CreateAppointment(same slot) error = %v, want ErrSlotTaken", err)
	}

	day, err := store.ListAppointmentsByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("ListAppointmentsByDate failed: %v", err)
	}
	if len(day) != 1 || day[0].Date != "2025-03-10" {
		t.Fatalf("day = %+v, want one appointment on 2025-03-10", day)
	}

	counts, err := store.CountAppointmentsBetween(ctx, "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("CountAppointmentsBetween failed: %v", err)
	}
	if counts["2025-03-10"] != 1 {
		t.Errorf("counts = %v, want 2025-03-10 -> 1", counts)
	}

	found, err := store.SearchAppointments(ctx, "555")
	if err != nil || len(found) != 1 {
		t.Errorf("SearchAppointments = %d results, %v; want 1, nil", len(found), err)
	}

	if err := store.DeleteAppointment(ctx, first.ID); err != nil {
		t.Fatalf("DeleteAppointment failed: %v", err)
	}
	if err := store.DeleteAppointment(ctx, first.ID); err != nil {
		t.Errorf("second DeleteAppointment should be a no-op, got %v", err)
	}
}
