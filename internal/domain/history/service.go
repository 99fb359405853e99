package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

// Service exposes the saved readings of the signed-in user.
type Service interface {
	Save(ctx context.Context, result reading.Result) (int64, error)
	List(ctx context.Context, limit, offset int) (Page, error)
	Get(ctx context.Context, id int64) (Reading, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	api    API
	tokens TokenSource
	logger *slog.Logger
}

// NewService wires the history layer.
func NewService(api API, tokens TokenSource, logger *slog.Logger) Service {
	return &service{
		api:    api,
		tokens: tokens,
		logger: logger.With("component", "history.service"),
	}
}

func (s *service) Save(ctx context.Context, result reading.Result) (int64, error) {
	if strings.TrimSpace(result.SessionID) == "" {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "reading has no session", nil)
	}
	if len(result.Cards) != reading.MaxSelected {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("a saved reading needs %d cards", reading.MaxSelected), nil)
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return 0, err
	}

	req := BuildSaveRequest(result)
	id, err := s.api.SaveReading(ctx, token, req)
	if err != nil {
		s.logger.Error("save reading failed", "session_id", result.SessionID, "error", err)
		return 0, apperrors.Annotate(err, apperrors.CodeNetwork, "could not save the reading")
	}
	s.logger.Info("reading saved", "session_id", result.SessionID, "reading_id", id)
	return id, nil
}

func (s *service) List(ctx context.Context, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return Page{}, err
	}
	page, err := s.api.ListReadings(ctx, token, limit, offset)
	if err != nil {
		return Page{}, apperrors.Annotate(err, apperrors.CodeNetwork, "could not load readings")
	}
	if page.Readings == nil {
		page.Readings = []Reading{}
	}
	page.Limit = limit
	page.Offset = offset
	return page, nil
}

func (s *service) Get(ctx context.Context, id int64) (Reading, error) {
	if id <= 0 {
		return Reading{}, apperrors.Wrap(apperrors.CodeInvalidInput, "reading id must be positive", nil)
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return Reading{}, err
	}
	rec, err := s.api.GetReading(ctx, token, id)
	if err != nil {
		return Reading{}, apperrors.Annotate(err, apperrors.CodeNetwork, "could not load the reading")
	}
	return rec, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "reading id must be positive", nil)
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if err := s.api.DeleteReading(ctx, token, id); err != nil {
		return apperrors.Annotate(err, apperrors.CodeNetwork, "could not delete the reading")
	}
	s.logger.Info("reading deleted", "reading_id", id)
	return nil
}

// BuildSaveRequest derives the stored name, description and payload of a reading.
func BuildSaveRequest(result reading.Result) SaveRequest {
	name := DefaultName
	if len(result.Answers) > 0 {
		if first := strings.TrimSpace(result.Answers[0]); first != "" {
			runes := []rune(first)
			if len(runes) > NamePreviewLength {
				runes = runes[:NamePreviewLength]
			}
			name = "Reading: " + string(runes) + "..."
		}
	}
	names := make([]string, 0, len(result.Cards))
	for _, card := range result.Cards {
		names = append(names, card.Name)
	}
	return SaveRequest{
		SessionID:   result.SessionID,
		Name:        name,
		Description: "Cards: " + strings.Join(names, ", "),
		Data: ReadingData{
			Cards:              result.Cards,
			Questions:          append([]string(nil), result.Answers...),
			Interpretation:     result.InterpretationHTML,
			InterpretationText: result.InterpretationText,
			Detail:             result.Detail,
			IsAIGenerated:      result.Mode == reading.ModeAI,
		},
	}
}

// Split separates AI generated readings from personal ones, keeping order.
func Split(readings []Reading) (ai, personal []Reading) {
	ai = make([]Reading, 0, len(readings))
	personal = make([]Reading, 0, len(readings))
	for _, r := range readings {
		if r.Data.IsAIGenerated {
			ai = append(ai, r)
		} else {
			personal = append(personal, r)
		}
	}
	return ai, personal
}
