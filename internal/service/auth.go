package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agendacitas/agenda/internal/auth"
	"github.com/agendacitas/agenda/internal/metrics"
	"github.com/agendacitas/agenda/internal/model"
	"github.com/agendacitas/agenda/internal/repository"
)

// AuthService validates credentials and changes passwords.
type AuthService struct {
	store   repository.Store
	metrics metrics.Recorder
	logger  *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{store: store, metrics: recorder, logger: logger}
}

// Login checks username and password and returns the session payload.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
// Legacy plain-text credentials are upgraded to Argon2id on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	if username == "" || password == "" {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same work as a real check.
			_, _ = auth.VerifyPassword(password, s.dummy())
			s.metrics.IncLogin(metrics.LoginFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("get user", err)
	}

	ok, err := auth.CheckPassword(password, user.Password)
	if err != nil {
		s.logger.Error("stored credential is unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.Password) {
		s.upgradeCredential(ctx, user, password)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return &model.Session{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ChangePassword replaces the password of username after re-checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	if strings.TrimSpace(next) == "" {
		return invalid("nueva", "La nueva contraseña es obligatoria.")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return storageError("get user", err)
	}

	ok, err := auth.CheckPassword(current, user.Password)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return storageError("hash password", err)
	}
	if err := s.store.UpdateUserPassword(ctx, username, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return storageError("update password", err)
	}

	s.logger.Info("password_changed", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword sets the password of username without checking the current
// one. A missing user is created when create is true; created reports it.
func (s *AuthService) ResetPassword(ctx context.Context, username, password string, create bool) (created bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, invalid("usuario", "El usuario es obligatorio.")
	}
	if strings.TrimSpace(password) == "" {
		return false, invalid("nueva", "La nueva contraseña es obligatoria.")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, storageError("hash password", err)
	}

	err = s.store.UpdateUserPassword(ctx, username, hash)
	switch {
	case err == nil:
		s.logger.Info("password_reset", slog.String("username", username))
		return false, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return false, storageError("update password", err)
	case !create:
		return false, ErrInvalidCredentials
	}

	user := &model.User{
		ID:        ulid.Make().String(),
		Username:  username,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return false, storageError("create user", err)
	}
	s.logger.Info("user_created", slog.String("username", username))
	return true, nil
}

func (s *AuthService) upgradeCredential(ctx context.Context, user *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("credential upgrade failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	if err := s.store.UpdateUserPassword(ctx, user.Username, hash); err != nil {
		s.logger.Warn("credential upgrade failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("credential_upgraded", slog.String("user_id", user.ID))
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := auth.HashPassword("agenda-dummy-credential")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
