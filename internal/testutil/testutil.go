package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agendacitas/agenda/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every agenda table so Migrate starts from scratch.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS citas, lugares, usuarios`); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

var memorySeq atomic.Int64

// MemoryDSN returns a SQLite DSN for a private shared-cache in-memory
// database. The database lives as long as one connection stays open.
func MemoryDSN(t testing.TB) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "=", "_", "&", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, memorySeq.Add(1))
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestAppointment creates an appointment with sensible defaults.
func NewTestAppointment(t testing.TB, date, slot string) *model.Appointment {
	t.Helper()
	return &model.Appointment{
		ID:    UniqueID("cita"),
		Name:  "Ana Pérez",
		Phone: "5551234567",
		Place: "Valle Alto",
		Date:  date,
		Time:  slot,
	}
}

// NewTestUser creates a user with the given stored credential.
func NewTestUser(t testing.TB, username, password string) *model.User {
	t.Helper()
	return &model.User{
		ID:        UniqueID("user"),
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), memorySeq.Add(1))
}
