package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{Port: 3000}, discardLogger())

	if srv.Addr() != ":3000" {
		t.Errorf("Addr() = %q, want :3000", srv.Addr())
	}
	if srv.shutdownTimeout != 30*time.Second {
		t.Errorf("shutdownTimeout = %s, want 30s", srv.shutdownTimeout)
	}
}

func TestRun_ShutsDownComponentsInReverseOrder(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{Port: 0, ShutdownTimeout: time.Second}, discardLogger())

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	srv.OnShutdown("sweeper", record("sweeper"))
	srv.OnShutdown("store", record("store"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	want := []string{"store", "sweeper"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("shutdown order = %v, want %v", order, want)
	}
}

func TestRun_ReportsComponentErrors(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{Port: 0, ShutdownTimeout: time.Second}, discardLogger())

	failure := errors.New("close failed")
	called := false
	srv.OnShutdown("first", func(context.Context) error {
		called = true
		return nil
	})
	srv.OnShutdown("broken", func(context.Context) error { return failure })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := srv.Run(ctx)
	if !errors.Is(err, failure) {
		t.Errorf("Run() error = %v, want %v", err, failure)
	}
	if !called {
		t.Error("components registered before a failing one must still stop")
	}
}
