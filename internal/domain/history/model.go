package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

const (
	// DefaultLimit is the page size used when none is given.
	DefaultLimit = 10
	// NamePreviewLength is how much of the first answer goes into a reading name.
	NamePreviewLength = 30
	// DefaultName is used when the first answer is empty.
	DefaultName = "New tarot reading"
)

// ReadingData is the free-form payload stored with a reading.
type ReadingData struct {
	Cards              []reading.Card `json:"cards"`
	Questions          []string       `json:"questions"`
	Interpretation     string         `json:"interpretation"`
	InterpretationText string         `json:"interpretation_text,omitempty"`
	Detail             reading.Detail `json:"detail,omitempty"`
	IsAIGenerated      bool           `json:"isAiGenerated"`
}

type readingDataWire struct {
	Cards              []json.RawMessage `json:"cards"`
	Questions          []string          `json:"questions"`
	Interpretation     string            `json:"interpretation"`
	InterpretationText string            `json:"interpretation_text"`
	Detail             reading.Detail    `json:"detail"`
	IsAIGenerated      bool              `json:"isAiGenerated"`
}

// UnmarshalJSON accepts the payload as an object or as a JSON encoded string,
// and cards as objects or bare names.
func (d *ReadingData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*d = ReadingData{}
		return nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return fmt.Errorf("decode reading data string: %w", err)
		}
		if inner == "" {
			*d = ReadingData{}
			return nil
		}
		trimmed = []byte(inner)
	}

	var wire readingDataWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return fmt.Errorf("decode reading data: %w", err)
	}
	cards := make([]reading.Card, 0, len(wire.Cards))
	for _, raw := range wire.Cards {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			cards = append(cards, reading.Card{Name: name})
			continue
		}
		var card reading.Card
		if err := json.Unmarshal(raw, &card); err != nil {
			return fmt.Errorf("decode reading card: %w", err)
		}
		cards = append(cards, card)
	}
	*d = ReadingData{
		Cards:              cards,
		Questions:          wire.Questions,
		Interpretation:     wire.Interpretation,
		InterpretationText: wire.InterpretationText,
		Detail:             wire.Detail,
		IsAIGenerated:      wire.IsAIGenerated,
	}
	return nil
}

// Reading is one saved reading.
type Reading struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Date        string      `json:"date,omitempty"`
	Time        string      `json:"time,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	Data        ReadingData `json:"readingData"`
}

// SaveRequest is what the backend stores for a finished reading.
type SaveRequest struct {
	SessionID   string
	Name        string
	Description string
	Data        ReadingData
}

// Page is a slice of the reading history.
type Page struct {
	Readings []Reading `json:"readings"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// API is the subset of the backend used for history.
type API interface {
	SaveReading(ctx context.Context, token string, req SaveRequest) (int64, error)
	ListReadings(ctx context.Context, token string, limit, offset int) (Page, error)
	GetReading(ctx context.Context, token string, id int64) (Reading, error)
	DeleteReading(ctx context.Context, token string, id int64) error
}

// TokenSource yields the bearer token of the signed-in user.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
