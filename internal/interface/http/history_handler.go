package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

// ListReadings pages through saved readings.
func (h *Handler) ListReadings(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	page, err := h.history.List(c.Request.Context(), limit, offset)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetReading returns one saved reading.
func (h *Handler) GetReading(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	rec, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteReading removes one saved reading.
func (h *Handler) DeleteReading(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if err := h.history.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, key+" must be a number", err)
	}
	return v, nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "reading id must be a number", err)
	}
	return id, nil
}
