package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

// Handler wires the HTTP transport to the reading, account and history layers.
type Handler struct {
	readings reading.Controller
	accounts account.Service
	history  history.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(readings reading.Controller, accounts account.Service, historySvc history.Service, logger *slog.Logger) *Handler {
	return &Handler{
		readings: readings,
		accounts: accounts,
		history:  historySvc,
		logger:   logger.With("component", "http.handler"),
	}
}

type beginRequest struct {
	Mode reading.Mode `json:"mode"`
}

type detailRequest struct {
	Detail reading.Detail `json:"detail"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type retreatRequest struct {
	Text string `json:"text"`
}

type handRequest struct {
	Count int `json:"count"`
}

type toggleRequest struct {
	ID   reading.CardID `json:"id"`
	Card *reading.Card  `json:"card"`
}

type submitSelectionRequest struct {
	Cards  []reading.Card `json:"cards"`
	Detail reading.Detail `json:"detail"`
}

// Snapshot returns the current wizard state.
func (h *Handler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.readings.Snapshot())
}

// BeginReading starts a new reading flow.
func (h *Handler) BeginReading(c *gin.Context) {
	var req beginRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondSnapshot(c)(h.readings.BeginReading(c.Request.Context(), req.Mode))
}

// ContinueToQuestions leaves the welcome screen.
func (h *Handler) ContinueToQuestions(c *gin.Context) {
	h.respondSnapshot(c)(h.readings.ContinueToQuestions())
}

// SetReadingDetail changes the requested interpretation length.
func (h *Handler) SetReadingDetail(c *gin.Context) {
	var req detailRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondSnapshot(c)(h.readings.SetReadingDetail(req.Detail))
}

// AdvanceQuestion records an answer and moves forward.
func (h *Handler) AdvanceQuestion(c *gin.Context) {
	var req answerRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondSnapshot(c)(h.readings.AdvanceQuestion(c.Request.Context(), req.Answer))
}

// RetreatQuestion keeps the draft answer and goes back one question.
func (h *Handler) RetreatQuestion(c *gin.Context) {
	var req retreatRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondSnapshot(c)(h.readings.RetreatQuestion(req.Text))
}

// DrawRandomHand deals a fresh fan of cards.
func (h *Handler) DrawRandomHand(c *gin.Context) {
	var req handRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	cards, err := h.readings.DrawRandomHand(c.Request.Context(), req.Count)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Catalog lists the full deck, optionally filtered by ?q=.
func (h *Handler) Catalog(c *gin.Context) {
	cards, err := h.readings.Catalog(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// ToggleCard selects or deselects a card by id, or by a full card for generated ids.
func (h *Handler) ToggleCard(c *gin.Context) {
	var req toggleRequest
	if !bindJSON(c, &req) {
		return
	}
	var (
		sel reading.Selection
		err error
	)
	if req.Card != nil {
		sel, err = h.readings.ToggleCard(*req.Card)
	} else {
		sel, err = h.readings.ToggleCardByID(req.ID)
	}
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, sel)
}

// SubmitManualSelection sends three hand picked cards for interpretation.
func (h *Handler) SubmitManualSelection(c *gin.Context) {
	var req submitSelectionRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondSnapshot(c)(h.readings.SubmitManualSelection(c.Request.Context(), req.Cards, req.Detail))
}

// RequestInterpretation interprets the current selection.
func (h *Handler) RequestInterpretation(c *gin.Context) {
	var req detailRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	h.respondSnapshot(c)(h.readings.RequestInterpretation(c.Request.Context(), req.Detail))
}

// DismissError clears the message shown to the user.
func (h *Handler) DismissError(c *gin.Context) {
	c.JSON(http.StatusOK, h.readings.DismissError())
}

// Reset abandons the current reading.
func (h *Handler) Reset(c *gin.Context) {
	c.JSON(http.StatusOK, h.readings.Reset())
}

// SaveReading stores the finished reading in the user's history.
func (h *Handler) SaveReading(c *gin.Context) {
	result, err := h.readings.Result()
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	id, err := h.history.Save(c.Request.Context(), result)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) respondSnapshot(c *gin.Context) func(reading.Snapshot, error) {
	return func(snap reading.Snapshot, err error) {
		if err != nil {
			abortWithError(c, fromDomainError(err))
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
