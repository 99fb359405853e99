package account

import (
	"context"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// User is the profile returned by the backend.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	TotalReadings int    `json:"totalReadings"`
	MonthReadings int    `json:"monthReadings"`
	SavedLayouts  int    `json:"savedLayouts"`
}

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Status is the local view of who is signed in.
type Status struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// AuthCheck is the backend's answer to check-auth.
type AuthCheck struct {
	Authenticated bool
	User          *User
}

// API is the subset of the backend used for accounts.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req RegisterRequest) (string, error)
	CheckAuth(ctx context.Context, token string) (AuthCheck, error)
	Profile(ctx context.Context, token string) (User, error)
}

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
