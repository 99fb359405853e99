package tarotapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

const (
	defaultBaseURL  = "http://localhost:5000"
	defaultTimeout  = 60 * time.Second
	requestIDHeader = "X-Request-Id"
)

// Client talks to the tarot backend over its JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client. Interpretations can take a while, so the
// timeout should be generous.
func NewClient(baseURL string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do sends one request and decodes the JSON response into out when it is not nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNetwork, fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNetwork, "read response", err)
	}

	var env envelope
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, env.text())
	}
	if env.Success != nil && !*env.Success {
		msg := env.text()
		if msg == "" {
			msg = "backend reported a failure"
		}
		return apperrors.Wrap(apperrors.CodeBackend, msg, nil)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(apperrors.CodeBackend, "decode response", err)
	}
	return nil
}

func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Wrap(apperrors.CodeUnauthorized, message, nil)
	case http.StatusNotFound:
		return apperrors.Wrap(apperrors.CodeNotFound, message, nil)
	default:
		return apperrors.Wrap(apperrors.CodeNetwork, fmt.Sprintf("backend status %d: %s", status, message), nil)
	}
}
