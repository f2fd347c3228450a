// Package ratelimit throttles login attempts per client.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result contains the outcome of a limit check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether another attempt for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a per-key token bucket held in process memory.
type Memory struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	perMin   int
	burst    int
	now      func() time.Time
}

// NewMemory allows ratePerMinute attempts per key with the given burst.
func NewMemory(ratePerMinute, burst int) *Memory {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if ratePerMinute > 0 {
		limit = rate.Limit(float64(ratePerMinute) / 60.0)
	}
	return &Memory{
		visitors: make(map[string]*visitor),
		limit:    limit,
		perMin:   ratePerMinute,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return Result{Allowed: true}, nil
	}

	retry := time.Second
	if m.perMin > 0 {
		retry = time.Minute / time.Duration(m.perMin)
	}
	return Result{Allowed: false, RetryAfter: retry}, nil
}

// Sweep forgets keys idle for longer than idle and returns how many.
func (m *Memory) Sweep(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	removed := 0
	for k, v := range m.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(m.visitors, k)
			removed++
		}
	}
	return removed
}
