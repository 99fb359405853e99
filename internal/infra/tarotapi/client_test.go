package tarotapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	reqID  string
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.reqID = r.Header.Get("X-Request-Id")
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second), rec
}

func TestClient_InterpretSendsExactPayload(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"success":true,"message":"**Past**\nok","reading_id":5}`)

	text, err := client.Interpret(context.Background(), reading.InterpretationRequest{
		SessionID: "sess-1",
		Cards:     []string{"The Fool", "The Sun", "The Moon"},
		Detail:    reading.DetailBrief,
	})
	require.NoError(t, err)
	require.Equal(t, "**Past**\nok", text)
	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, "/api/draw-cards", rec.path)
	require.NotEmpty(t, rec.reqID)
	require.Empty(t, rec.auth)
	require.Equal(t, map[string]any{
		"session_id":     "sess-1",
		"cards":          []any{"The Fool", "The Sun", "The Moon"},
		"detail":         "brief",
		"reading_detail": "brief",
	}, rec.body)
}

func TestClient_SessionAndQuestions(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"session_id":"abc","message":"New session created","is_authenticated":false}`)
	id, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc", id)
	require.Equal(t, "/api/new-session", rec.path)

	client, rec = newServer(t, http.StatusOK, `{"message":"ok"}`)
	require.NoError(t, client.SubmitQuestions(context.Background(), "abc", []string{"a", "", "c"}))
	require.Equal(t, map[string]any{"session_id": "abc", "responses": []any{"a", "", "c"}}, rec.body)
}

func TestClient_RandomCardsAcceptsNumericIDs(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"cards":[{"id":1,"name":"The Fool","image":"/static/fool.jpg","type":"major"},{"name":"The Sun"}]}`)

	cards, err := client.RandomCards(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, "count=20", rec.query)
	require.Equal(t, reading.CardID("1"), cards[0].ID)
	require.Empty(t, cards[1].ID)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Token is invalid"}`, apperrors.CodeUnauthorized},
		{"not found", http.StatusNotFound, `{"success":false,"message":"missing"}`, apperrors.CodeNotFound},
		{"server error", http.StatusInternalServerError, `{"success":false,"message":"llm down"}`, apperrors.CodeNetwork},
		{"soft failure", http.StatusOK, `{"success":false,"message":"nope"}`, apperrors.CodeBackend},
		{"garbage", http.StatusOK, `not json`, apperrors.CodeBackend},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newServer(t, tc.status, tc.body)
			_, err := client.Cards(context.Background())
			require.True(t, apperrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).CreateSession(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNetwork))
}

func TestClient_AuthCalls(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"authenticated":true,"user":{"id":3,"name":"Ada","email":"ada@example.com"}}`)
	check, err := client.CheckAuth(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, check.Authenticated)
	require.Equal(t, int64(3), check.User.ID)
	require.Equal(t, "Bearer tok", rec.auth)

	client, _ = newServer(t, http.StatusOK, `{"success":true,"user":{"id":3,"name":"Ada","email":"ada@example.com","created_at":"2024-01-02","total_readings":7,"month_readings":2,"saved_layouts":1}}`)
	user, err := client.Profile(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, 7, user.TotalReadings)
	require.Equal(t, "2024-01-02", user.CreatedAt)

	client, rec = newServer(t, http.StatusOK, `{"token":"jwt","message":"Login successful"}`)
	token, err := client.Login(context.Background(), "ada@example.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, "jwt", token)
	require.Equal(t, "/api/auth/login", rec.path)
}

func TestClient_ReadingHistory(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"success":true,"readings":[{"id":9,"name":"Reading: x...","description":"Cards: a","reading_data":"{\"cards\":[\"The Sun\"],\"isAiGenerated\":true}"}],"total":4}`)
	page, err := client.ListReadings(context.Background(), "tok", 10, 0)
	require.NoError(t, err)
	require.Equal(t, "limit=10&offset=0", rec.query)
	require.Equal(t, 4, page.Total)
	require.Equal(t, "Reading: x...", page.Readings[0].Name)
	require.True(t, page.Readings[0].Data.IsAIGenerated)
	require.Equal(t, "The Sun", page.Readings[0].Data.Cards[0].Name)

	client, rec = newServer(t, http.StatusOK, `{"success":true,"reading":{"id":9,"reading_name":"Detail name","reading_data":{"questions":["q"]}}}`)
	rd, err := client.GetReading(context.Background(), "tok", 9)
	require.NoError(t, err)
	require.Equal(t, "/api/user/readings/9", rec.path)
	require.Equal(t, "Detail name", rd.Name)
	require.Equal(t, []string{"q"}, rd.Data.Questions)

	client, rec = newServer(t, http.StatusOK, `{"success":true,"message":"saved","reading_id":12}`)
	id, err := client.SaveReading(context.Background(), "tok", history.SaveRequest{
		SessionID:   "s",
		Name:        "Reading: q...",
		Description: "Cards: a, b, c",
		Data:        history.ReadingData{Questions: []string{"q"}, IsAIGenerated: true},
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), id)
	require.Equal(t, "Reading: q...", rec.body["reading_name"])
	require.Equal(t, true, rec.body["reading_data"].(map[string]any)["isAiGenerated"])

	client, rec = newServer(t, http.StatusOK, `{"success":true}`)
	require.NoError(t, client.DeleteReading(context.Background(), "tok", 9))
	require.Equal(t, http.MethodDelete, rec.method)
}
