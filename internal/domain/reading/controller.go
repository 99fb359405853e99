package reading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

// Controller owns the client side state of one tarot reading, from the first
// call to BeginReading until the interpretation is shown.
type Controller interface {
	BeginReading(ctx context.Context, mode Mode) (Snapshot, error)
	ContinueToQuestions() (Snapshot, error)
	SetReadingDetail(detail Detail) (Snapshot, error)
	AdvanceQuestion(ctx context.Context, answer string) (Snapshot, error)
	RetreatQuestion(currentText string) (Snapshot, error)
	DrawRandomHand(ctx context.Context, count int) ([]Card, error)
	Catalog(ctx context.Context, query string) ([]Card, error)
	ToggleCard(card Card) (Selection, error)
	ToggleCardByID(id CardID) (Selection, error)
	SubmitManualSelection(ctx context.Context, cards []Card, detail Detail) (Snapshot, error)
	RequestInterpretation(ctx context.Context, detail Detail) (Snapshot, error)
	DismissError() Snapshot
	Reset() Snapshot
	Snapshot() Snapshot
	Result() (Result, error)
}

type state struct {
	stage     Stage
	mode      Mode
	sessionID string
	question  int
	answers   [QuestionCount]string
	detail    Detail
	hand      []Card
	selected  []Card
	catalog   []Card
	raw       string
	html      string
	errMsg    string
}

type controller struct {
	cfg         Config
	sessions    SessionAPI
	catalogAPI  CatalogAPI
	interpreter InterpretationAPI
	cache       CatalogCache
	sanitizer   Sanitizer
	logger      *slog.Logger

	mu       sync.Mutex
	st       state
	epoch    uint64
	inFlight bool
	status   *statusRotator
}

// NewController wires the reading state machine. cache and sanitizer are optional.
func NewController(cfg Config, sessions SessionAPI, catalog CatalogAPI, interpreter InterpretationAPI, cache CatalogCache, sanitizer Sanitizer, logger *slog.Logger) Controller {
	cfg = cfg.withDefaults()
	return &controller{
		cfg:         cfg,
		sessions:    sessions,
		catalogAPI:  catalog,
		interpreter: interpreter,
		cache:       cache,
		sanitizer:   sanitizer,
		logger:      logger.With("component", "reading.controller"),
		st:          state{stage: StageIdle, detail: cfg.DefaultDetail},
	}
}

func (c *controller) BeginReading(ctx context.Context, mode Mode) (Snapshot, error) {
	if !mode.Valid() {
		return c.Snapshot(), apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown reading mode %q", mode), nil)
	}

	c.mu.Lock()
	epoch, err := c.startRequestLocked()
	c.mu.Unlock()
	if err != nil {
		return c.Snapshot(), err
	}

	sessionID, err := c.sessions.CreateSession(ctx)
	if err == nil && strings.TrimSpace(sessionID) == "" {
		err = apperrors.Wrap(apperrors.CodeBackend, "backend returned an empty session id", nil)
	}
	var catalog []Card
	if err == nil {
		var catErr error
		catalog, catErr = c.loadCatalog(ctx)
		if catErr != nil {
			c.logger.Warn("catalog prefetch failed, will retry on demand", "error", catErr)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finishRequestLocked(epoch) {
		return c.snapshotLocked(), staleResponse()
	}
	if err != nil {
		c.logger.Error("create session failed", "mode", mode, "error", err)
		c.st.errMsg = "Could not connect to the reading service. Please try again."
		return c.snapshotLocked(), apperrors.Annotate(err, apperrors.CodeNetwork, "could not connect to the reading service")
	}

	next := state{
		mode:      mode,
		sessionID: sessionID,
		question:  1,
		detail:    c.cfg.DefaultDetail,
		catalog:   catalog,
	}
	if mode == ModeAI {
		next.stage = StageWelcome
	} else {
		next.stage = StageQuestions
	}
	c.st = next
	c.logger.Info("reading started", "session_id", sessionID, "mode", mode, "catalog_size", len(catalog))
	return c.snapshotLocked(), nil
}

func (c *controller) ContinueToQuestions() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked(StageWelcome); err != nil {
		return c.snapshotLocked(), err
	}
	c.st.stage = StageQuestions
	c.st.question = 1
	return c.snapshotLocked(), nil
}

func (c *controller) SetReadingDetail(detail Detail) (Snapshot, error) {
	if !detail.Valid() {
		return c.Snapshot(), apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown detail level %q", detail), nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked(StageWelcome, StageQuestions, StageCardSelection); err != nil {
		return c.snapshotLocked(), err
	}
	c.st.detail = detail
	return c.snapshotLocked(), nil
}

func (c *controller) AdvanceQuestion(ctx context.Context, answer string) (Snapshot, error) {
	c.mu.Lock()
	if err := c.guardLocked(StageQuestions); err != nil {
		defer c.mu.Unlock()
		return c.snapshotLocked(), err
	}
	c.st.answers[c.st.question-1] = answer
	if c.st.question < QuestionCount {
		c.st.question++
		defer c.mu.Unlock()
		return c.snapshotLocked(), nil
	}
	if c.st.sessionID == "" {
		defer c.mu.Unlock()
		return c.snapshotLocked(), apperrors.Wrap(apperrors.CodeInvalidState, "no session, start a reading first", nil)
	}
	sessionID := c.st.sessionID
	responses := append([]string(nil), c.st.answers[:]...)
	epoch, _ := c.startRequestLocked()
	c.mu.Unlock()

	err := c.sessions.SubmitQuestions(ctx, sessionID, responses)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finishRequestLocked(epoch) {
		return c.snapshotLocked(), staleResponse()
	}
	if err != nil {
		c.logger.Error("submit questions failed", "session_id", sessionID, "error", err)
		c.st.errMsg = "Your answers could not be sent. Please try again."
		return c.snapshotLocked(), apperrors.Annotate(err, apperrors.CodeNetwork, "could not submit answers")
	}
	c.st.stage = StageCardSelection
	c.st.errMsg = ""
	c.logger.Info("questions submitted", "session_id", sessionID, "mode", c.st.mode)
	return c.snapshotLocked(), nil
}

func (c *controller) RetreatQuestion(currentText string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked(StageQuestions); err != nil {
		return c.snapshotLocked(), err
	}
	if c.st.question <= 1 {
		return c.snapshotLocked(), apperrors.Wrap(apperrors.CodeInvalidState, "already at the first question", nil)
	}
	c.st.answers[c.st.question-1] = currentText
	c.st.question--
	return c.snapshotLocked(), nil
}

func (c *controller) DrawRandomHand(ctx context.Context, count int) ([]Card, error) {
	c.mu.Lock()
	if err := c.guardLocked(StageCardSelection); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.st.mode != ModeAI {
		c.mu.Unlock()
		return nil, apperrors.Wrap(apperrors.CodeInvalidState, "a random hand is only offered for ai readings", nil)
	}
	if c.st.sessionID == "" {
		c.mu.Unlock()
		return nil, apperrors.Wrap(apperrors.CodeInvalidState, "no session, start a reading first", nil)
	}
	if count <= 0 {
		count = c.cfg.HandSize
	}
	epoch, _ := c.startRequestLocked()
	c.mu.Unlock()

	cards, err := c.catalogAPI.RandomCards(ctx, count)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finishRequestLocked(epoch) {
		return nil, staleResponse()
	}
	if err != nil {
		c.logger.Error("draw random hand failed", "count", count, "error", err)
		c.st.errMsg = "The deck could not be shuffled. Please try again."
		return nil, apperrors.Annotate(err, apperrors.CodeNetwork, "could not draw cards")
	}
	c.st.hand = EnsureCardIDs(cards)
	c.st.selected = nil
	c.st.errMsg = ""
	c.logger.Debug("hand drawn", "requested", count, "received", len(cards))
	return listOf(c.st.hand), nil
}

func (c *controller) Catalog(ctx context.Context, query string) ([]Card, error) {
	c.mu.Lock()
	cached := c.st.catalog
	epoch := c.epoch
	c.mu.Unlock()
	if cached != nil {
		return FilterCards(cached, query), nil
	}

	cards, err := c.loadCatalog(ctx)
	if err != nil {
		return nil, apperrors.Annotate(err, apperrors.CodeNetwork, "could not load the card catalog")
	}
	c.mu.Lock()
	if epoch == c.epoch && c.st.stage != StageIdle {
		c.st.catalog = cards
	}
	c.mu.Unlock()
	return FilterCards(cards, query), nil
}

func (c *controller) ToggleCard(card Card) (Selection, error) {
	if card.ID == "" {
		if strings.TrimSpace(card.Name) == "" {
			return c.selection(), apperrors.Wrap(apperrors.CodeInvalidInput, "card needs an id or a name", nil)
		}
		card.ID = GeneratedID(card.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggleLocked(card)
}

func (c *controller) ToggleCardByID(id CardID) (Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	card, ok := findCard(c.st.selected, id)
	if !ok {
		card, ok = findCard(c.st.hand, id)
	}
	if !ok {
		card, ok = findCard(c.st.catalog, id)
	}
	if !ok {
		return selectionOf(c.st.selected), apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("card %q is not on the table", id), nil)
	}
	return c.toggleLocked(card)
}

func (c *controller) toggleLocked(card Card) (Selection, error) {
	if err := c.guardLocked(StageCardSelection); err != nil {
		return selectionOf(c.st.selected), err
	}
	next, err := Toggle(c.st.selected, card)
	if err != nil {
		return selectionOf(c.st.selected), err
	}
	c.st.selected = next
	return selectionOf(next), nil
}

func (c *controller) SubmitManualSelection(ctx context.Context, cards []Card, detail Detail) (Snapshot, error) {
	if len(cards) != MaxSelected {
		return c.Snapshot(), apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("exactly %d cards are required, got %d", MaxSelected, len(cards)), nil)
	}
	hand := EnsureCardIDs(cards)
	if hasDuplicateIDs(hand) {
		return c.Snapshot(), apperrors.Wrap(apperrors.CodeInvalidInput, "the same card was chosen twice", nil)
	}
	if detail != "" && !detail.Valid() {
		return c.Snapshot(), apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown detail level %q", detail), nil)
	}

	c.mu.Lock()
	if err := c.guardLocked(StageCardSelection); err != nil {
		defer c.mu.Unlock()
		return c.snapshotLocked(), err
	}
	c.st.selected = hand
	call, err := c.startInterpretationLocked(detail)
	c.mu.Unlock()
	if err != nil {
		return c.Snapshot(), err
	}
	return c.awaitInterpretation(ctx, call)
}

func (c *controller) RequestInterpretation(ctx context.Context, detail Detail) (Snapshot, error) {
	if detail != "" && !detail.Valid() {
		return c.Snapshot(), apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown detail level %q", detail), nil)
	}
	c.mu.Lock()
	call, err := c.startInterpretationLocked(detail)
	c.mu.Unlock()
	if err != nil {
		return c.Snapshot(), err
	}
	return c.awaitInterpretation(ctx, call)
}

type interpretationCall struct {
	req    InterpretationRequest
	epoch  uint64
	status *statusRotator
}

func (c *controller) startInterpretationLocked(detail Detail) (interpretationCall, error) {
	if err := c.guardLocked(StageCardSelection); err != nil {
		return interpretationCall{}, err
	}
	if len(c.st.selected) != MaxSelected {
		return interpretationCall{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("select exactly %d cards before asking for an interpretation", MaxSelected), nil)
	}
	if c.st.sessionID == "" {
		return interpretationCall{}, apperrors.Wrap(apperrors.CodeInvalidState, "no session, start a reading first", nil)
	}
	if detail != "" {
		c.st.detail = detail
	}
	epoch, _ := c.startRequestLocked()
	rotator := newStatusRotator(c.cfg.StatusMessages, c.cfg.StatusInterval)
	c.status = rotator
	c.st.stage = StageInterpreting
	c.st.errMsg = ""
	return interpretationCall{
		req: InterpretationRequest{
			SessionID: c.st.sessionID,
			Cards:     cardNames(c.st.selected),
			Detail:    c.st.detail,
		},
		epoch:  epoch,
		status: rotator,
	}, nil
}

func (c *controller) awaitInterpretation(ctx context.Context, call interpretationCall) (Snapshot, error) {
	raw, err := func() (string, error) {
		defer call.status.Stop()
		return c.interpreter.Interpret(ctx, call.req)
	}()
	if err == nil && strings.TrimSpace(raw) == "" {
		err = apperrors.Wrap(apperrors.CodeBackend, "backend returned an empty interpretation", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == call.status {
		c.status = nil
	}
	if !c.finishRequestLocked(call.epoch) {
		c.logger.Info("discarding interpretation for an abandoned reading", "session_id", call.req.SessionID)
		return c.snapshotLocked(), staleResponse()
	}
	if err != nil {
		c.logger.Error("interpretation failed", "session_id", call.req.SessionID, "error", err)
		c.st.stage = StageCardSelection
		c.st.errMsg = "The interpretation could not be generated. Please try again."
		return c.snapshotLocked(), apperrors.Annotate(err, apperrors.CodeNetwork, "could not get an interpretation")
	}

	html := FormatInterpretation(raw)
	if c.sanitizer != nil {
		html = c.sanitizer.Sanitize(html)
	}
	c.st.raw = raw
	c.st.html = html
	c.st.stage = StageDone
	c.logger.Info("interpretation received", "session_id", call.req.SessionID, "detail", call.req.Detail, "chars", len(raw))
	return c.snapshotLocked(), nil
}

func (c *controller) DismissError() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.errMsg = ""
	return c.snapshotLocked()
}

func (c *controller) Reset() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.inFlight = false
	if c.status != nil {
		c.status.Stop()
		c.status = nil
	}
	c.st = state{stage: StageIdle, detail: c.cfg.DefaultDetail}
	return c.snapshotLocked()
}

func (c *controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *controller) Result() (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.stage != StageDone {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidState, "the reading is not finished yet", nil)
	}
	return Result{
		SessionID:          c.st.sessionID,
		Mode:               c.st.mode,
		Detail:             c.st.detail,
		Answers:            append([]string(nil), c.st.answers[:]...),
		Cards:              listOf(c.st.selected),
		InterpretationText: c.st.raw,
		InterpretationHTML: c.st.html,
	}, nil
}

func (c *controller) selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return selectionOf(c.st.selected)
}

func (c *controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Stage:              c.st.stage,
		Mode:               c.st.mode,
		SessionID:          c.st.sessionID,
		Question:           c.st.question,
		Answers:            append([]string(nil), c.st.answers[:]...),
		Detail:             c.st.detail,
		Hand:               listOf(c.st.hand),
		Selected:           listOf(c.st.selected),
		Ready:              len(c.st.selected) == MaxSelected,
		Pending:            c.inFlight,
		InterpretationHTML: c.st.html,
		InterpretationText: c.st.raw,
		Error:              c.st.errMsg,
	}
	if c.st.stage == StageInterpreting && c.status != nil {
		snap.Status = c.status.Current()
	}
	return snap
}

// guardLocked rejects operations while a request is in flight or outside the allowed stages.
func (c *controller) guardLocked(allowed ...Stage) error {
	if c.inFlight {
		return apperrors.Wrap(apperrors.CodeRequestInFlight, "wait for the current request to finish", nil)
	}
	for _, stage := range allowed {
		if c.st.stage == stage {
			return nil
		}
	}
	return apperrors.Wrap(apperrors.CodeInvalidState, fmt.Sprintf("not available while the reading is in stage %q", c.st.stage), nil)
}

func (c *controller) startRequestLocked() (uint64, error) {
	if c.inFlight {
		return 0, apperrors.Wrap(apperrors.CodeRequestInFlight, "wait for the current request to finish", nil)
	}
	c.inFlight = true
	return c.epoch, nil
}

// finishRequestLocked reports whether a response issued at epoch may still be applied.
func (c *controller) finishRequestLocked(epoch uint64) bool {
	if epoch != c.epoch {
		return false
	}
	c.inFlight = false
	return true
}

func (c *controller) loadCatalog(ctx context.Context) ([]Card, error) {
	if c.cache != nil {
		cards, ok, err := c.cache.GetCatalog(ctx)
		if err != nil {
			c.logger.Warn("catalog cache read failed", "error", err)
		} else if ok {
			return EnsureCardIDs(cards), nil
		}
	}
	cards, err := c.catalogAPI.Cards(ctx)
	if err != nil {
		return nil, err
	}
	cards = EnsureCardIDs(cards)
	if c.cache != nil {
		if err := c.cache.SaveCatalog(ctx, cards, c.cfg.CatalogTTL); err != nil {
			c.logger.Warn("catalog cache write failed", "error", err)
		}
	}
	return cards, nil
}

func staleResponse() error {
	return apperrors.Wrap(apperrors.CodeStaleResponse, "the reading was restarted while the request was in flight", nil)
}
