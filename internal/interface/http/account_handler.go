package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/history"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs the user in.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, status)
}

// Register creates an account. The user still has to sign in afterwards.
func (h *Handler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	message, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// Logout forgets the stored token.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context()); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// AuthStatus reports who is signed in.
func (h *Handler) AuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.accounts.Current())
}

// Profile returns the user profile with the recent readings split by origin.
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	page, err := h.history.List(c.Request.Context(), history.DefaultLimit, 0)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	ai, personal := history.Split(page.Readings)
	c.JSON(http.StatusOK, gin.H{
		"user":             user,
		"aiReadings":       ai,
		"personalReadings": personal,
		"total":            page.Total,
	})
}
