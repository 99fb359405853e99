package reading

import (
	"context"
	"time"
)

// SessionAPI creates backend sessions and records the wizard answers.
type SessionAPI interface {
	CreateSession(ctx context.Context) (string, error)
	SubmitQuestions(ctx context.Context, sessionID string, responses []string) error
}

// CatalogAPI serves the card catalog.
type CatalogAPI interface {
	Cards(ctx context.Context) ([]Card, error)
	RandomCards(ctx context.Context, count int) ([]Card, error)
}

// InterpretationAPI turns a hand into raw interpretation text.
type InterpretationAPI interface {
	Interpret(ctx context.Context, req InterpretationRequest) (string, error)
}

// CatalogCache keeps the full catalog between readings.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]Card, bool, error)
	SaveCatalog(ctx context.Context, cards []Card, ttl time.Duration) error
}

// Sanitizer strips unsafe markup from generated HTML.
type Sanitizer interface {
	Sanitize(html string) string
}
