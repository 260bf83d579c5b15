package handlers

import (
	"net/http"
	"strings"

	"github.com/brainpace/brainpace/internal/breakdown"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry a breakdown without paying twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// BreakdownHandler serves AI task breakdowns.
type BreakdownHandler struct {
	service *breakdown.Service
}

// NewBreakdownHandler constructs a BreakdownHandler.
func NewBreakdownHandler(service *breakdown.Service) *BreakdownHandler {
	return &BreakdownHandler{service: service}
}

// Create asks the model to split the task into steps.
func (h *BreakdownHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))

	out, err := h.service.Breakdown(c.Request.Context(), userID, taskID, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task":     taskJSON(out.Task),
		"quota":    out.Quota,
		"replayed": out.Replayed,
	})
}
