package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/agendacitas/agenda/internal/metrics"
	"github.com/agendacitas/agenda/internal/middleware"
	"github.com/agendacitas/agenda/internal/ratelimit"
	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/session"
	"github.com/agendacitas/agenda/internal/view"
)

const (
	csrfCookieName = "agenda_csrf"
	// CSRFFieldName is the hidden form field carrying the CSRF token.
	CSRFFieldName = "csrf_token"

	msgCSRF = "El formulario expiró. Recarga la página e intenta de nuevo."
)

// Deps holds everything the router wires together.
type Deps struct {
	Logger      *slog.Logger
	Views       *view.Renderer
	Metrics     metrics.Recorder
	Snapshotter metrics.Snapshotter

	Auth         *service.AuthService
	Appointments *service.AppointmentService
	Places       *service.PlaceService

	Sessions     *session.Manager
	LoginLimiter ratelimit.Limiter

	// DB and Cache back /readyz. Leave Cache nil without Redis.
	DB    HealthChecker
	Cache HealthChecker

	// Location is the time zone of "today" and of exported events.
	Location *time.Location

	// CSRFKey enables CSRF protection of every form when set (32 bytes).
	CSRFKey []byte
	// Secure marks cookies Secure and expects HTTPS.
	Secure bool

	Development bool
	MaxBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	maxBody := deps.MaxBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	base := New(deps.Views, logger)
	authHandler := NewAuthHandler(base, deps.Auth, deps.Sessions, recorder)
	appointmentHandler := NewAppointmentHandler(base, deps.Appointments, deps.Places)
	placeHandler := NewPlaceHandler(base, deps.Places)
	searchHandler := NewSearchHandler(base, deps.Appointments)
	calendarHandler := NewCalendarHandler(base, deps.Appointments, deps.Location)
	healthHandler := NewHealthHandler(deps.DB, deps.Cache, logger)
	metricsHandler := NewMetricsHandler(deps.Snapshotter)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: deps.Development}))
	r.Use(middleware.MaxBodySize(maxBody))

	// Operational endpoints (no session)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Handle("/static/*", view.Static())

	r.Group(func(r chi.Router) {
		if len(deps.CSRFKey) > 0 {
			if !deps.Secure {
				r.Use(plaintextHTTP)
			}
			r.Use(csrf.Protect(deps.CSRFKey,
				csrf.CookieName(csrfCookieName),
				csrf.FieldName(CSRFFieldName),
				csrf.Path("/"),
				csrf.Secure(deps.Secure),
				csrf.HttpOnly(true),
				csrf.SameSite(csrf.SameSiteLaxMode),
				csrf.ErrorHandler(http.HandlerFunc(base.csrfFailure)),
			))
		}
		r.Use(deps.Sessions.Load)

		r.Get("/login", authHandler.LoginForm)
		r.With(middleware.Throttle(middleware.ThrottleConfig{
			Logger:   logger,
			Limiter:  deps.LoginLimiter,
			Rejected: http.HandlerFunc(authHandler.Throttled),
		})).Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// Everything below requires a session
		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth)

			r.Get("/", calendarHandler.Month)
			r.Get("/mes", calendarHandler.Month)
			r.Get("/exportar.ics", calendarHandler.Export)

			r.Get("/citas", appointmentHandler.Day)
			r.Post("/citas", appointmentHandler.Create)
			r.Post("/citas/{id}/editar", appointmentHandler.Update)
			r.Post("/citas/{id}/eliminar", appointmentHandler.Delete)

			r.Get("/buscar", searchHandler.Search)

			r.Get("/lugares", placeHandler.List)
			r.Post("/lugares", placeHandler.Add)

			r.Get("/cambiar-pass", authHandler.ChangePasswordForm)
			r.Post("/cambiar-pass", authHandler.ChangePassword)
		})
	})

	// 404 and 405 handlers
	r.NotFound(base.NotFound)
	r.MethodNotAllowed(base.MethodNotAllowed)

	return r
}

// plaintextHTTP tells the CSRF check the app is served over plain HTTP,
// so a missing Referer is not treated as an attack.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (h *Handler) csrfFailure(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	h.logger.Warn("csrf_rejected",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
	)
	h.renderError(w, r, http.StatusForbidden, msgCSRF, r.URL.Path)
}
