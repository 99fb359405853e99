package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

func TestService_LoginStoresTokenAndProfile(t *testing.T) {
	api := &stubAPI{token: "tok-1", profile: User{ID: 4, Name: "Ada", Email: "ada@example.com"}}
	store := &memoryTokens{}
	svc := NewService(api, store, newTestLogger())

	status, err := svc.Login(context.Background(), " ada@example.com ", "Secret123")
	require.NoError(t, err)
	require.True(t, status.Authenticated)
	require.Equal(t, "Ada", status.User.Name)
	require.Equal(t, "tok-1", store.token)
	require.Equal(t, "ada@example.com", api.lastEmail)

	token, err := svc.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
}

func TestService_LoginSurvivesProfileFailure(t *testing.T) {
	api := &stubAPI{token: "tok-1", profileErr: apperrors.Wrap(apperrors.CodeNetwork, "down", nil)}
	svc := NewService(api, &memoryTokens{}, newTestLogger())

	status, err := svc.Login(context.Background(), "ada@example.com", "Secret123")
	require.NoError(t, err)
	require.True(t, status.Authenticated)
	require.Nil(t, status.User)
}

func TestService_LoginValidationSkipsNetwork(t *testing.T) {
	api := &stubAPI{}
	svc := NewService(api, &memoryTokens{}, newTestLogger())

	_, err := svc.Login(context.Background(), "", "x")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, api.calls)

	api.loginErr = apperrors.Wrap(apperrors.CodeUnauthorized, "bad credentials", nil)
	_, err = svc.Login(context.Background(), "ada@example.com", "wrong")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	require.False(t, svc.Current().Authenticated)
}

func TestValidateRegistration(t *testing.T) {
	valid := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "Secret123", ConfirmPassword: "Secret123"}
	require.NoError(t, ValidateRegistration(valid))

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing name", func(r *RegisterRequest) { r.Name = "" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "ada@example" }},
		{"mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "Secret124" }},
		{"short", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "Se1", "Se1" }},
		{"no upper", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "secret123", "secret123" }},
		{"no digit", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "SecretPass", "SecretPass" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			require.True(t, apperrors.IsCode(ValidateRegistration(req), apperrors.CodeInvalidInput))
		})
	}
}

func TestService_RegisterNeverCallsBackendOnInvalidInput(t *testing.T) {
	api := &stubAPI{registerMessage: "Registration successful"}
	svc := NewService(api, &memoryTokens{}, newTestLogger())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "weak", ConfirmPassword: "weak"})
	require.Error(t, err)
	require.Zero(t, api.calls)

	msg, err := svc.Register(context.Background(), RegisterRequest{Name: " Ada ", Email: "ada@example.com", Password: "Secret123", ConfirmPassword: "Secret123"})
	require.NoError(t, err)
	require.Equal(t, "Registration successful", msg)
	require.Equal(t, "Ada", api.lastRegister.Name)
}

func TestService_Restore(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		api := &stubAPI{}
		status, err := NewService(api, &memoryTokens{}, newTestLogger()).Restore(context.Background())
		require.NoError(t, err)
		require.False(t, status.Authenticated)
		require.Zero(t, api.calls)
	})

	t.Run("expired jwt cleared locally", func(t *testing.T) {
		api := &stubAPI{}
		store := &memoryTokens{token: signedToken(t, time.Now().Add(-time.Hour))}
		status, err := NewService(api, store, newTestLogger()).Restore(context.Background())
		require.NoError(t, err)
		require.False(t, status.Authenticated)
		require.Empty(t, store.token)
		require.Zero(t, api.calls)
	})

	t.Run("backend rejects", func(t *testing.T) {
		api := &stubAPI{check: AuthCheck{Authenticated: false}}
		store := &memoryTokens{token: "opaque"}
		status, err := NewService(api, store, newTestLogger()).Restore(context.Background())
		require.NoError(t, err)
		require.False(t, status.Authenticated)
		require.Empty(t, store.token)
	})

	t.Run("backend error clears token", func(t *testing.T) {
		api := &stubAPI{checkErr: errors.New("connection refused")}
		store := &memoryTokens{token: "opaque"}
		_, err := NewService(api, store, newTestLogger()).Restore(context.Background())
		require.NoError(t, err)
		require.Empty(t, store.token)
	})

	t.Run("valid", func(t *testing.T) {
		token := signedToken(t, time.Now().Add(time.Hour))
		api := &stubAPI{check: AuthCheck{Authenticated: true, User: &User{ID: 1, Name: "Ada"}}}
		store := &memoryTokens{token: token}
		svc := NewService(api, store, newTestLogger())
		status, err := svc.Restore(context.Background())
		require.NoError(t, err)
		require.True(t, status.Authenticated)
		require.Equal(t, "Ada", svc.Current().User.Name)
		require.Equal(t, token, api.lastToken)
	})
}

func TestService_ProfileUnauthorizedForgetsToken(t *testing.T) {
	api := &stubAPI{profileErr: apperrors.Wrap(apperrors.CodeUnauthorized, "expired", nil)}
	store := &memoryTokens{token: "opaque"}
	svc := NewService(api, store, newTestLogger())

	_, err := svc.Profile(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	require.Empty(t, store.token)

	_, err = svc.Token(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestService_Logout(t *testing.T) {
	api := &stubAPI{token: "tok", profile: User{Name: "Ada"}}
	store := &memoryTokens{}
	svc := NewService(api, store, newTestLogger())
	_, err := svc.Login(context.Background(), "ada@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	require.False(t, svc.Current().Authenticated)
	require.Empty(t, store.token)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

type stubAPI struct {
	calls           int
	token           string
	loginErr        error
	lastEmail       string
	registerMessage string
	lastRegister    RegisterRequest
	check           AuthCheck
	checkErr        error
	lastToken       string
	profile         User
	profileErr      error
}

func (s *stubAPI) Login(_ context.Context, email, _ string) (string, error) {
	s.calls++
	s.lastEmail = email
	return s.token, s.loginErr
}

func (s *stubAPI) Register(_ context.Context, req RegisterRequest) (string, error) {
	s.calls++
	s.lastRegister = req
	return s.registerMessage, nil
}

func (s *stubAPI) CheckAuth(_ context.Context, token string) (AuthCheck, error) {
	s.calls++
	s.lastToken = token
	return s.check, s.checkErr
}

func (s *stubAPI) Profile(context.Context, string) (User, error) {
	s.calls++
	return s.profile, s.profileErr
}

type memoryTokens struct {
	token string
}

func (m *memoryTokens) Load(context.Context) (string, bool, error) {
	return m.token, m.token != "", nil
}

func (m *memoryTokens) Save(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *memoryTokens) Clear(context.Context) error {
	m.token = ""
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
