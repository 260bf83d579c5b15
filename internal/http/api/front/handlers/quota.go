package handlers

import (
	"net/http"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/gin-gonic/gin"
)

// QuotaHandler serves the current user's AI allowance.
type QuotaHandler struct {
	gate *quota.Gate
}

// NewQuotaHandler constructs a QuotaHandler.
func NewQuotaHandler(gate *quota.Gate) *QuotaHandler {
	return &QuotaHandler{gate: gate}
}

// Get returns the quota decision without consuming anything.
func (h *QuotaHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	decision, row, err := h.gate.Check(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quota": quotaJSON(row, decision)})
}

func quotaJSON(row *models.SubscriptionQuota, decision quota.Decision) gin.H {
	return gin.H{
		"tier":           row.Tier,
		"requests_used":  row.RequestsUsed,
		"requests_limit": row.RequestsLimit,
		"remaining":      decision.Remaining,
		"allowed":        decision.Allowed,
		"state":          decision.State,
		"reset_date":     row.ResetDate,
	}
}
