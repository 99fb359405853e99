package tarotapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

type sessionResponse struct {
	SessionID       string `json:"session_id"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

type submitQuestionsRequest struct {
	SessionID string   `json:"session_id"`
	Responses []string `json:"responses"`
}

type cardsResponse struct {
	Cards []reading.Card `json:"cards"`
}

type drawCardsRequest struct {
	SessionID     string   `json:"session_id"`
	Cards         []string `json:"cards"`
	Detail        string   `json:"detail,omitempty"`
	ReadingDetail string   `json:"reading_detail,omitempty"`
}

type drawCardsResponse struct {
	Message   string `json:"message"`
	ReadingID int64  `json:"reading_id"`
}

// CreateSession implements reading.SessionAPI.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/new-session", "", nil, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// SubmitQuestions implements reading.SessionAPI.
func (c *Client) SubmitQuestions(ctx context.Context, sessionID string, responses []string) error {
	return c.do(ctx, http.MethodPost, "/api/submit-questions", "", submitQuestionsRequest{
		SessionID: sessionID,
		Responses: responses,
	}, nil)
}

// Cards implements reading.CatalogAPI.
func (c *Client) Cards(ctx context.Context) ([]reading.Card, error) {
	var out cardsResponse
	if err := c.do(ctx, http.MethodGet, "/api/cards", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

// RandomCards implements reading.CatalogAPI.
func (c *Client) RandomCards(ctx context.Context, count int) ([]reading.Card, error) {
	if count <= 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "card count must be positive", nil)
	}
	var out cardsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/random-subset-cards?count=%d", count), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

// Interpret implements reading.InterpretationAPI. The detail level is sent under
// both keys the backend has used.
func (c *Client) Interpret(ctx context.Context, req reading.InterpretationRequest) (string, error) {
	var out drawCardsResponse
	err := c.do(ctx, http.MethodPost, "/api/draw-cards", "", drawCardsRequest{
		SessionID:     req.SessionID,
		Cards:         req.Cards,
		Detail:        string(req.Detail),
		ReadingDetail: string(req.Detail),
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

var (
	_ reading.SessionAPI        = (*Client)(nil)
	_ reading.CatalogAPI        = (*Client)(nil)
	_ reading.InterpretationAPI = (*Client)(nil)
)
