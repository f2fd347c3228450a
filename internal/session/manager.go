package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/agendacitas/agenda/internal/auth"
	"github.com/agendacitas/agenda/internal/model"
)

const (
	// DefaultCookieName names the session cookie.
	DefaultCookieName = "agenda_session"
	// DefaultTTL is the session lifetime when none is configured.
	DefaultTTL = 12 * time.Hour
	// LoginPath is where unauthenticated requests are sent.
	LoginPath = "/login"
)

// Options configures a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager issues session cookies and resolves them on each request.
// Only the hash of a token is handed to the Store.
type Manager struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewManager creates a Manager.
func NewManager(store Store, opts Options, logger *slog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, opts: opts, logger: logger}
}

// Create starts a fresh session for s and sets the cookie. Any session
// presented by the request is discarded first.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, s *model.Session) error {
	m.discard(r)

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}
	if err := m.store.Save(r.Context(), auth.QuickHash(token), s, m.opts.TTL); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy deletes the stored session, if any, and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	m.discard(r)
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Load resolves the session cookie and stores the result in the request
// context. Requests without a valid session continue anonymously.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		s, err := m.store.Load(r.Context(), auth.QuickHash(token))
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.logger.Error("session lookup failed", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), s)))
	})
}

func (m *Manager) discard(r *http.Request) {
	token := m.token(r)
	if token == "" {
		return
	}
	if err := m.store.Delete(r.Context(), auth.QuickHash(token)); err != nil {
		m.logger.Warn("session delete failed", slog.String("error", err.Error()))
	}
}

func (m *Manager) token(r *http.Request) string {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || !auth.ValidateTokenFormat(c.Value) {
		return ""
	}
	return c.Value
}

// RequireAuth redirects to the login page when the request carries no
// session. Must run after Manager.Load.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFromContext(r.Context()) == nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
