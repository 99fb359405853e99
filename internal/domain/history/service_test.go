package history

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

func finishedReading() reading.Result {
	return reading.Result{
		SessionID:          "sess-9",
		Mode:               reading.ModeAI,
		Detail:             reading.DetailBrief,
		Answers:            []string{"Will my new job bring me joy and stability?", "", "health"},
		Cards:              []reading.Card{{ID: "1", Name: "The Fool"}, {ID: "2", Name: "The Sun"}, {ID: "3", Name: "The Moon"}},
		InterpretationText: "**Past**\nok",
		InterpretationHTML: "<h3>Past</h3><p>ok</p>",
	}
}

func TestBuildSaveRequest(t *testing.T) {
	req := BuildSaveRequest(finishedReading())
	require.Equal(t, "Reading: Will my new job bring me joy a...", req.Name)
	require.Equal(t, "Cards: The Fool, The Sun, The Moon", req.Description)
	require.True(t, req.Data.IsAIGenerated)
	require.Equal(t, "<h3>Past</h3><p>ok</p>", req.Data.Interpretation)
	require.Len(t, req.Data.Questions, 3)

	blank := finishedReading()
	blank.Answers = []string{"  ", "", ""}
	blank.Mode = reading.ModePersonal
	req = BuildSaveRequest(blank)
	require.Equal(t, DefaultName, req.Name)
	require.False(t, req.Data.IsAIGenerated)
}

func TestService_SaveRequiresToken(t *testing.T) {
	api := &stubAPI{}
	svc := NewService(api, tokenFunc(func() (string, error) {
		return "", apperrors.Wrap(apperrors.CodeUnauthorized, "sign in first", nil)
	}), newTestLogger())

	_, err := svc.Save(context.Background(), finishedReading())
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	require.Zero(t, api.calls)

	_, err = svc.List(context.Background(), 0, 0)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	require.Zero(t, api.calls)
}

func TestService_SaveAndList(t *testing.T) {
	api := &stubAPI{savedID: 42, page: Page{Readings: []Reading{{ID: 42}}, Total: 1}}
	svc := NewService(api, staticToken("tok"), newTestLogger())

	id, err := svc.Save(context.Background(), finishedReading())
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.Equal(t, "tok", api.lastToken)
	require.Equal(t, "sess-9", api.lastSave.SessionID)

	page, err := svc.List(context.Background(), -1, -5)
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, api.lastLimit)
	require.Zero(t, api.lastOffset)
	require.Equal(t, 1, page.Total)
	require.Equal(t, DefaultLimit, page.Limit)
}

func TestService_SaveRejectsIncompleteReading(t *testing.T) {
	api := &stubAPI{}
	svc := NewService(api, staticToken("tok"), newTestLogger())
	result := finishedReading()
	result.Cards = result.Cards[:2]

	_, err := svc.Save(context.Background(), result)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, api.calls)
}

func TestService_GetAndDeleteKeepBackendCodes(t *testing.T) {
	api := &stubAPI{err: apperrors.Wrap(apperrors.CodeNotFound, "missing", nil)}
	svc := NewService(api, staticToken("tok"), newTestLogger())

	_, err := svc.Get(context.Background(), 7)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.True(t, apperrors.IsCode(svc.Delete(context.Background(), 7), apperrors.CodeNotFound))
	require.True(t, apperrors.IsCode(svc.Delete(context.Background(), 0), apperrors.CodeInvalidInput))
}

func TestReadingData_AcceptsObjectOrString(t *testing.T) {
	object := `{"cards":[{"id":3,"name":"The Sun"},"The Moon"],"questions":["a","b","c"],"interpretation":"<p>x</p>","isAiGenerated":true}`
	encoded, err := json.Marshal(object)
	require.NoError(t, err)

	for _, payload := range []string{object, string(encoded)} {
		var data ReadingData
		require.NoError(t, json.Unmarshal([]byte(payload), &data))
		require.Equal(t, []reading.Card{{ID: "3", Name: "The Sun"}, {Name: "The Moon"}}, data.Cards)
		require.True(t, data.IsAIGenerated)
		require.Equal(t, "<p>x</p>", data.Interpretation)
	}

	var empty ReadingData
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	require.Empty(t, empty.Cards)
	require.Error(t, json.Unmarshal([]byte(`"not json"`), &empty))
}

func TestSplit(t *testing.T) {
	readings := []Reading{
		{ID: 1, Data: ReadingData{IsAIGenerated: true}},
		{ID: 2},
		{ID: 3, Data: ReadingData{IsAIGenerated: true}},
	}
	ai, personal := Split(readings)
	require.Equal(t, []int64{1, 3}, ids(ai))
	require.Equal(t, []int64{2}, ids(personal))
}

func ids(readings []Reading) []int64 {
	out := make([]int64, 0, len(readings))
	for _, r := range readings {
		out = append(out, r.ID)
	}
	return out
}

type stubAPI struct {
	calls      int
	err        error
	savedID    int64
	lastSave   SaveRequest
	lastToken  string
	lastLimit  int
	lastOffset int
	page       Page
}

func (s *stubAPI) SaveReading(_ context.Context, token string, req SaveRequest) (int64, error) {
	s.calls++
	s.lastToken = token
	s.lastSave = req
	return s.savedID, s.err
}

func (s *stubAPI) ListReadings(_ context.Context, _ string, limit, offset int) (Page, error) {
	s.calls++
	s.lastLimit = limit
	s.lastOffset = offset
	return s.page, s.err
}

func (s *stubAPI) GetReading(context.Context, string, int64) (Reading, error) {
	s.calls++
	return Reading{}, s.err
}

func (s *stubAPI) DeleteReading(context.Context, string, int64) error {
	s.calls++
	return s.err
}

type tokenFunc func() (string, error)

func (f tokenFunc) Token(context.Context) (string, error) { return f() }

func staticToken(token string) TokenSource {
	return tokenFunc(func() (string, error) { return token, nil })
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
