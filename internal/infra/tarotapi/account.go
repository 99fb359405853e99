package tarotapi

import (
	"context"
	"net/http"

	"github.com/yanqian/ai-tarot/internal/domain/account"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userPayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar"`
	CreatedAt     string `json:"created_at"`
	TotalReadings int    `json:"total_readings"`
	MonthReadings int    `json:"month_readings"`
	SavedLayouts  int    `json:"saved_layouts"`
}

func (u userPayload) toUser() account.User {
	return account.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Avatar:        u.Avatar,
		CreatedAt:     u.CreatedAt,
		TotalReadings: u.TotalReadings,
		MonthReadings: u.MonthReadings,
		SavedLayouts:  u.SavedLayouts,
	}
}

type checkAuthResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *userPayload `json:"user"`
}

type profileResponse struct {
	User userPayload `json:"user"`
}

// Login implements account.API and returns the bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Register implements account.API and returns the backend's confirmation.
func (c *Client) Register(ctx context.Context, req account.RegisterRequest) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// CheckAuth implements account.API.
func (c *Client) CheckAuth(ctx context.Context, token string) (account.AuthCheck, error) {
	var out checkAuthResponse
	if err := c.do(ctx, http.MethodGet, "/api/check-auth", token, nil, &out); err != nil {
		return account.AuthCheck{}, err
	}
	check := account.AuthCheck{Authenticated: out.Authenticated}
	if out.User != nil {
		user := out.User.toUser()
		check.User = &user
	}
	return check, nil
}

// Profile implements account.API.
func (c *Client) Profile(ctx context.Context, token string) (account.User, error) {
	var out profileResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", token, nil, &out); err != nil {
		return account.User{}, err
	}
	return out.User.toUser(), nil
}

var _ account.API = (*Client)(nil)
