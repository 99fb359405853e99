package tarotapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yanqian/ai-tarot/internal/domain/history"
)

type saveReadingRequest struct {
	SessionID   string              `json:"session_id"`
	ReadingName string              `json:"reading_name"`
	Description string              `json:"description"`
	ReadingData history.ReadingData `json:"reading_data"`
}

type saveReadingResponse struct {
	ReadingID int64 `json:"reading_id"`
}

// readingPayload covers both the list shape (name) and the detail shape (reading_name).
type readingPayload struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	ReadingName string              `json:"reading_name"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Icon        string              `json:"icon"`
	ReadingData history.ReadingData `json:"reading_data"`
}

func (p readingPayload) toReading() history.Reading {
	name := p.Name
	if name == "" {
		name = p.ReadingName
	}
	return history.Reading{
		ID:          p.ID,
		Name:        name,
		Description: p.Description,
		Date:        p.Date,
		Time:        p.Time,
		Icon:        p.Icon,
		Data:        p.ReadingData,
	}
}

type listReadingsResponse struct {
	Readings []readingPayload `json:"readings"`
	Total    int              `json:"total"`
}

type getReadingResponse struct {
	Reading readingPayload `json:"reading"`
}

// SaveReading implements history.API.
func (c *Client) SaveReading(ctx context.Context, token string, req history.SaveRequest) (int64, error) {
	var out saveReadingResponse
	err := c.do(ctx, http.MethodPost, "/api/save-reading", token, saveReadingRequest{
		SessionID:   req.SessionID,
		ReadingName: req.Name,
		Description: req.Description,
		ReadingData: req.Data,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.ReadingID, nil
}

// ListReadings implements history.API.
func (c *Client) ListReadings(ctx context.Context, token string, limit, offset int) (history.Page, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var out listReadingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/readings?"+query.Encode(), token, nil, &out); err != nil {
		return history.Page{}, err
	}
	readings := make([]history.Reading, 0, len(out.Readings))
	for _, r := range out.Readings {
		readings = append(readings, r.toReading())
	}
	total := out.Total
	if total < len(readings) {
		total = offset + len(readings)
	}
	return history.Page{Readings: readings, Total: total, Limit: limit, Offset: offset}, nil
}

// GetReading implements history.API.
func (c *Client) GetReading(ctx context.Context, token string, id int64) (history.Reading, error) {
	var out getReadingResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/user/readings/%d", id), token, nil, &out); err != nil {
		return history.Reading{}, err
	}
	return out.Reading.toReading(), nil
}

// DeleteReading implements history.API.
func (c *Client) DeleteReading(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/user/readings/%d", id), token, nil, nil)
}

var _ history.API = (*Client)(nil)
