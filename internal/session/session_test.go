package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agendacitas/agenda/internal/auth"
	"github.com/agendacitas/agenda/internal/model"
)

func newTestManager(store Store) *Manager {
	return NewManager(store, Options{TTL: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, "a", &model.Session{Username: "paulina"}, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "b", &model.Session{Username: "paulina"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Load(ctx, "a"); err != nil {
		t.Fatalf("Load before expiry failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after expiry error = %v, want ErrNotFound", err)
	}

	now = now.Add(2 * time.Hour)
	if n := store.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Save(ctx, "k", &model.Session{Username: "paulina"}, time.Hour)

	s, _ := store.Load(ctx, "k")
	s.Username = "mallory"

	again, _ := store.Load(ctx, "k")
	if again.Username != "paulina" {
		t.Error("Load should return a copy")
	}
}

func TestManager_CreateLoadDestroy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	mgr := newTestManager(store)

	// Login
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := mgr.Create(rec, req, &model.Session{UserID: "u1", Username: "paulina"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != DefaultCookieName || !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie attributes: %+v", cookie)
	}
	if store.Len() != 1 {
		t.Fatalf("store Len = %d, want 1", store.Len())
	}
	if _, err := store.Load(context.Background(), cookie.Value); !errors.Is(err, ErrNotFound) {
		t.Error("raw token must not be used as the store key")
	}

	// Authenticated request
	var seen string
	handler := mgr.Load(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UsernameFromContext(r.Context())
	})))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "paulina" {
		t.Fatalf("status = %d, user = %q", rec.Code, seen)
	}

	// Logout
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	mgr.Destroy(rec, req)
	if store.Len() != 0 {
		t.Errorf("store Len after Destroy = %d, want 0", store.Len())
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Destroy should expire the cookie, got %+v", cleared)
	}

	// Old cookie no longer authenticates
	seen = ""
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || seen != "" {
		t.Errorf("status = %d, user = %q; want redirect", rec.Code, seen)
	}
}

func TestManager_CreateReplacesPreviousSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	mgr := newTestManager(store)

	rec := httptest.NewRecorder()
	_ = mgr.Create(rec, httptest.NewRequest(http.MethodPost, "/login", nil), &model.Session{Username: "paulina"})
	first := rec.Result().Cookies()[0]

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(first)
	_ = mgr.Create(rec, req, &model.Session{Username: "paulina"})

	if store.Len() != 1 {
		t.Errorf("store Len = %d, want 1 after re-login", store.Len())
	}
	if rec.Result().Cookies()[0].Value == first.Value {
		t.Error("re-login should issue a new token")
	}
}

func TestRequireAuth_Redirects(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(NewMemoryStore())
	called := false
	handler := mgr.Load(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"malformed token", &http.Cookie{Name: DefaultCookieName, Value: "abc"}},
		{"unknown token", &http.Cookie{Name: DefaultCookieName, Value: "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"}},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/citas?fecha=2025-06-10", nil)
		if tt.cookie != nil {
			req.AddCookie(tt.cookie)
		}
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", tt.name, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != LoginPath {
			t.Errorf("%s: Location = %q, want %q", tt.name, loc, LoginPath)
		}
	}
	if called {
		t.Error("protected handler ran without a session")
	}
}
