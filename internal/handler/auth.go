package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/agendacitas/agenda/internal/auth"
	"github.com/agendacitas/agenda/internal/handler/dto"
	"github.com/agendacitas/agenda/internal/metrics"
	"github.com/agendacitas/agenda/internal/middleware"
	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/session"
	"github.com/agendacitas/agenda/internal/view"
)

const (
	msgBadCredentials   = "Usuario o contraseña incorrectos."
	msgThrottled        = "Demasiados intentos. Espera un momento e intenta de nuevo."
	msgWrongPassword    = "La contraseña actual no es correcta."
	msgPasswordChanged  = "Contraseña actualizada correctamente."
	titleLogin          = "Iniciar sesión"
	titleChangePassword = "Cambiar contraseña"
)

// AuthHandler serves login, logout and password change.
type AuthHandler struct {
	*Handler
	svc      *service.AuthService
	sessions *session.Manager
	metrics  metrics.Recorder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(base *Handler, svc *service.AuthService, sessions *session.Manager, recorder metrics.Recorder) *AuthHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthHandler{Handler: base, svc: svc, sessions: sessions, metrics: recorder}
}

// LoginForm handles GET /login. Signed-in users go straight to the calendar.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, view.PageLogin, view.Page{Title: titleLogin})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := dto.ParseLoginForm(r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, view.PageLogin, view.Page{Title: titleLogin, Error: msgBadForm})
		return
	}

	sess, err := h.svc.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("login_failed",
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.String("ip", middleware.ClientIP(r)),
			)
			h.render(w, r, http.StatusUnauthorized, view.PageLogin, view.Page{Title: titleLogin, Error: msgBadCredentials})
			return
		}
		h.internalError(w, r, err)
		return
	}

	if err := h.sessions.Create(w, r, sess); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.logger.Info("login_succeeded", slog.String("user_id", sess.UserID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Throttled renders the login page for a client over its attempt budget.
// It is the rejection handler of the login throttle.
func (h *AuthHandler) Throttled(w http.ResponseWriter, r *http.Request) {
	h.metrics.IncLogin(metrics.LoginThrottled)
	h.render(w, r, http.StatusTooManyRequests, view.PageLogin, view.Page{Title: titleLogin, Error: msgThrottled})
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
}

// ChangePasswordForm handles GET /cambiar-pass.
func (h *AuthHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageChangePassword, view.Page{Title: titleChangePassword})
}

// ChangePassword handles POST /cambiar-pass.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	page := view.Page{Title: titleChangePassword}

	form, err := dto.ParsePasswordForm(r)
	if err != nil {
		page.Error = msgBadForm
		h.render(w, r, http.StatusBadRequest, view.PageChangePassword, page)
		return
	}

	sess := auth.MustSessionFromContext(r.Context())
	err = h.svc.ChangePassword(r.Context(), sess.Username, form.Current, form.New)
	switch {
	case err == nil:
		page.Success = msgPasswordChanged
		h.render(w, r, http.StatusOK, view.PageChangePassword, page)
	case errors.Is(err, service.ErrInvalidCredentials):
		page.Error = msgWrongPassword
		h.render(w, r, http.StatusUnprocessableEntity, view.PageChangePassword, page)
	default:
		if msg, ok := validationMessage(err); ok {
			page.Error = msg
			h.render(w, r, http.StatusUnprocessableEntity, view.PageChangePassword, page)
			return
		}
		h.internalError(w, r, err)
	}
}
