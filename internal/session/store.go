// Package session manages server-side login sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agendacitas/agenda/internal/model"
)

// ErrNotFound is returned by a Store when the key is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by an opaque, already-hashed identifier.
type Store interface {
	Save(ctx context.Context, key string, s *model.Session, ttl time.Duration) error
	Load(ctx context.Context, key string) (*model.Session, error)
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	session   model.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Save stores a copy of s until ttl elapses.
func (m *MemoryStore) Save(_ context.Context, key string, s *model.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{session: *s, expiresAt: m.now().Add(ttl)}
	return nil
}

// Load returns a copy of the session or ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, key string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

// Delete removes the session. Unknown keys are ignored.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
