package reading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// QuestionCount is the number of wizard questions asked before card selection.
	QuestionCount = 3
	// MaxSelected is the size of a hand submitted for interpretation.
	MaxSelected = 3
	// DefaultHandSize is how many cards the random fan offers.
	DefaultHandSize = 20
)

// Stage identifies the wizard view that is currently active.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageWelcome       Stage = "welcome"
	StageQuestions     Stage = "questions"
	StageCardSelection Stage = "card-selection"
	StageInterpreting  Stage = "interpreting"
	StageDone          Stage = "done"
)

// Mode is how the user picks cards: from a random fan or from the full catalog.
type Mode string

const (
	ModeAI       Mode = "ai"
	ModePersonal Mode = "personal"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAI || m == ModePersonal
}

// Detail is the verbosity requested for the generated interpretation.
type Detail string

const (
	DetailDetailed Detail = "detailed"
	DetailBrief    Detail = "brief"
)

// Valid reports whether d is a known detail level.
func (d Detail) Valid() bool {
	return d == DetailDetailed || d == DetailBrief
}

// CardID identifies a card. The backend sends either strings or numbers.
type CardID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *CardID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode card id: %w", err)
		}
		*id = CardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode card id: %w", err)
	}
	*id = CardID(n.String())
	return nil
}

// Card is a single tarot card as served by the catalog.
type Card struct {
	ID    CardID  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Image string  `json:"image,omitempty"`
	Type  string  `json:"type,omitempty"`
	Suit  *string `json:"suit,omitempty"`
}

// Selection is the current hand plus whether it can be interpreted.
type Selection struct {
	Cards []Card `json:"cards"`
	Ready bool   `json:"ready"`
}

// Snapshot is a read-only projection of the controller used for rendering.
type Snapshot struct {
	Stage              Stage    `json:"stage"`
	Mode               Mode     `json:"mode,omitempty"`
	SessionID          string   `json:"sessionId,omitempty"`
	Question           int      `json:"question"`
	Answers            []string `json:"answers"`
	Detail             Detail   `json:"detail"`
	Hand               []Card   `json:"hand"`
	Selected           []Card   `json:"selected"`
	Ready              bool     `json:"ready"`
	Pending            bool     `json:"pending"`
	Status             string   `json:"status,omitempty"`
	InterpretationHTML string   `json:"interpretationHtml,omitempty"`
	InterpretationText string   `json:"interpretationText,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Result is the immutable outcome of a finished reading.
type Result struct {
	SessionID          string
	Mode               Mode
	Detail             Detail
	Answers            []string
	Cards              []Card
	InterpretationText string
	InterpretationHTML string
}

// InterpretationRequest is sent to the interpretation API.
type InterpretationRequest struct {
	SessionID string
	Cards     []string
	Detail    Detail
}

// Config wires runtime settings for the controller.
type Config struct {
	HandSize       int
	DefaultDetail  Detail
	StatusMessages []string
	StatusInterval time.Duration
	CatalogTTL     time.Duration
}

// DefaultStatusMessages rotate while an interpretation is being generated.
var DefaultStatusMessages = []string{
	"Connecting to the energy of the cards...",
	"Analyzing the chosen symbols...",
	"Reading the astral lines...",
	"Interpreting how the cards relate...",
	"Preparing your personal spread...",
}

func (c Config) withDefaults() Config {
	if c.HandSize <= 0 {
		c.HandSize = DefaultHandSize
	}
	if !c.DefaultDetail.Valid() {
		c.DefaultDetail = DetailDetailed
	}
	if len(c.StatusMessages) == 0 {
		c.StatusMessages = DefaultStatusMessages
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = 2 * time.Second
	}
	return c
}
