package account

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

// Service keeps the signed-in user and the bearer token used by other layers.
type Service interface {
	Login(ctx context.Context, email, password string) (Status, error)
	Register(ctx context.Context, req RegisterRequest) (string, error)
	Restore(ctx context.Context) (Status, error)
	Profile(ctx context.Context) (User, error)
	Logout(ctx context.Context) error
	Current() Status
	Token(ctx context.Context) (string, error)
}

type service struct {
	api    API
	store  TokenStore
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	token  string
	status Status
}

// NewService wires the account layer.
func NewService(api API, store TokenStore, logger *slog.Logger) Service {
	return &service{
		api:    api,
		store:  store,
		logger: logger.With("component", "account.service"),
		now:    time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (Status, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.Current(), apperrors.Wrap(apperrors.CodeInvalidInput, "email and password are required", nil)
	}

	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", "email", email, "error", err)
		return s.Current(), apperrors.Annotate(err, apperrors.CodeNetwork, "login failed")
	}
	if strings.TrimSpace(token) == "" {
		return s.Current(), apperrors.Wrap(apperrors.CodeBackend, "backend returned no token", nil)
	}
	if err := s.store.Save(ctx, token); err != nil {
		s.logger.Error("persist token failed", "error", err)
	}

	status := Status{Authenticated: true}
	user, err := s.api.Profile(ctx, token)
	if err != nil {
		s.logger.Warn("profile fetch after login failed", "error", err)
	} else {
		status.User = &user
	}

	s.mu.Lock()
	s.token = token
	s.status = status
	s.mu.Unlock()
	s.logger.Info("user signed in", "email", email)
	return status, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateRegistration(req); err != nil {
		return "", err
	}
	message, err := s.api.Register(ctx, req)
	if err != nil {
		s.logger.Warn("registration failed", "email", req.Email, "error", err)
		return "", apperrors.Annotate(err, apperrors.CodeNetwork, "registration failed")
	}
	s.logger.Info("user registered", "email", req.Email)
	return message, nil
}

func (s *service) Restore(ctx context.Context) (Status, error) {
	token, ok, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("load stored token failed", "error", err)
		ok = false
	}
	if !ok || strings.TrimSpace(token) == "" {
		s.reset()
		return Status{}, nil
	}
	if s.expired(token) {
		s.logger.Info("stored token expired, clearing")
		s.forget(ctx)
		return Status{}, nil
	}

	check, err := s.api.CheckAuth(ctx, token)
	if err != nil || !check.Authenticated {
		if err != nil {
			s.logger.Warn("check auth failed, clearing token", "error", err)
		}
		s.forget(ctx)
		return Status{}, nil
	}

	status := Status{Authenticated: true, User: check.User}
	s.mu.Lock()
	s.token = token
	s.status = status
	s.mu.Unlock()
	return status, nil
}

func (s *service) Profile(ctx context.Context) (User, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return User{}, err
	}
	user, err := s.api.Profile(ctx, token)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUnauthorized) {
			s.forget(ctx)
		}
		return User{}, apperrors.Annotate(err, apperrors.CodeNetwork, "could not load profile")
	}
	s.mu.Lock()
	if s.token == token {
		s.status = Status{Authenticated: true, User: &user}
	}
	s.mu.Unlock()
	return user, nil
}

func (s *service) Logout(ctx context.Context) error {
	s.reset()
	if err := s.store.Clear(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidState, "could not remove stored token", err)
	}
	s.logger.Info("user signed out")
	return nil
}

func (s *service) Current() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	if status.User != nil {
		user := *status.User
		status.User = &user
	}
	return status
}

// Token returns the bearer token for authenticated calls, or an unauthorized error.
func (s *service) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		stored, ok, err := s.store.Load(ctx)
		if err != nil || !ok {
			return "", apperrors.Wrap(apperrors.CodeUnauthorized, "sign in first", err)
		}
		token = stored
	}
	if s.expired(token) {
		s.forget(ctx)
		return "", apperrors.Wrap(apperrors.CodeUnauthorized, "session expired, sign in again", nil)
	}
	return token, nil
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens are left to the backend.
func (s *service) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now())
}

func (s *service) forget(ctx context.Context) {
	s.reset()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear stored token failed", "error", err)
	}
}

func (s *service) reset() {
	s.mu.Lock()
	s.token = ""
	s.status = Status{}
	s.mu.Unlock()
}
