package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agendacitas/agenda/internal/ratelimit"
)

type stubLimiter struct {
	result ratelimit.Result
	err    error
	keys   []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (ratelimit.Result, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestThrottle(t *testing.T) {
	tests := []struct {
		name           string
		limiter        *stubLimiter
		wantStatus     int
		wantRetryAfter string
	}{
		{
			name:       "allowed",
			limiter:    &stubLimiter{result: ratelimit.Result{Allowed: true}},
			wantStatus: http.StatusOK,
		},
		{
			name:           "rejected",
			limiter:        &stubLimiter{result: ratelimit.Result{RetryAfter: 6 * time.Second}},
			wantStatus:     http.StatusTooManyRequests,
			wantRetryAfter: "6",
		},
		{
			name:           "sub-second retry rounds up",
			limiter:        &stubLimiter{result: ratelimit.Result{RetryAfter: 200 * time.Millisecond}},
			wantStatus:     http.StatusTooManyRequests,
			wantRetryAfter: "1",
		},
		{
			name:       "limiter error fails open",
			limiter:    &stubLimiter{err: errors.New("redis down")},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Throttle(ThrottleConfig{Logger: discardLogger(), Limiter: tt.limiter})(okHandler())

			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = "203.0.113.7:51234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.wantRetryAfter {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetryAfter)
			}
			if len(tt.limiter.keys) != 1 || tt.limiter.keys[0] != "203.0.113.7" {
				t.Errorf("limiter keys = %v, want [203.0.113.7]", tt.limiter.keys)
			}
		})
	}
}

func TestThrottle_CustomRejection(t *testing.T) {
	rejected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "custom")
	})
	limiter := &stubLimiter{result: ratelimit.Result{RetryAfter: time.Second}}

	handler := Throttle(ThrottleConfig{Logger: discardLogger(), Limiter: limiter, Rejected: rejected})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rec.Body.String() != "custom" {
		t.Errorf("body = %q, want custom", rec.Body.String())
	}
}

func TestThrottle_MemoryLimiter(t *testing.T) {
	handler := Throttle(ThrottleConfig{Logger: discardLogger(), Limiter: ratelimit.NewMemory(1, 2)})(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
