package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemory_Burst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	m := NewMemory(6, 3) // one token every 10s
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		res, err := m.Allow(ctx, "10.0.0.1")
		if err != nil || !res.Allowed {
			t.Fatalf("attempt %d should be allowed: %+v, %v", i+1, res, err)
		}
	}

	res, _ := m.Allow(ctx, "10.0.0.1")
	if res.Allowed {
		t.Fatal("fourth attempt should be throttled")
	}
	if res.RetryAfter != 10*time.Second {
		t.Errorf("RetryAfter = %v, want 10s", res.RetryAfter)
	}

	// Other clients are independent.
	if res, _ := m.Allow(ctx, "10.0.0.2"); !res.Allowed {
		t.Error("a different key should not be throttled")
	}

	now = now.Add(10 * time.Second)
	if res, _ := m.Allow(ctx, "10.0.0.1"); !res.Allowed {
		t.Error("token should refill after 10s")
	}
}

func TestMemory_Sweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	m := NewMemory(10, 5)
	m.now = func() time.Time { return now }

	_, _ = m.Allow(ctx, "a")
	now = now.Add(5 * time.Minute)
	_, _ = m.Allow(ctx, "b")

	if n := m.Sweep(time.Minute); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if _, ok := m.visitors["b"]; !ok {
		t.Error("recent key should survive the sweep")
	}
}

func TestMemory_Unlimited(t *testing.T) {
	t.Parallel()

	m := NewMemory(0, 1)
	for i := 0; i < 50; i++ {
		if res, _ := m.Allow(context.Background(), "k"); !res.Allowed {
			t.Fatalf("attempt %d throttled with unlimited rate", i+1)
		}
	}
}
