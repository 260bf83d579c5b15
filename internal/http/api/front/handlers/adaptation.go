package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/adaptation"
	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usererr"
	"github.com/gin-gonic/gin"
)

// Adaptation sources reported to the client.
const (
	sourceBrainState = "brain_state"
	sourceDefault    = "default"
	sourcePreview    = "preview"
)

// AdaptationHandler serves UI adaptation presets.
type AdaptationHandler struct {
	states store.BrainStateStore
	now    func() time.Time
}

// NewAdaptationHandler constructs an AdaptationHandler.
func NewAdaptationHandler(states store.BrainStateStore) *AdaptationHandler {
	return &AdaptationHandler{states: states, now: time.Now}
}

// Current returns the adaptation for today's check-in, or defaults when there is none.
func (h *AdaptationHandler) Current(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	state, err := h.states.TodayBrainState(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	source := sourceDefault
	if state != nil {
		source = sourceBrainState
	}
	c.JSON(http.StatusOK, gin.H{"adaptation": adaptation.FromState(state), "source": source})
}

// Preview computes the adaptation for explicit energy and focus values.
func (h *AdaptationHandler) Preview(c *gin.Context) {
	energy, errEnergy := levelQuery(c, "energy")
	if errEnergy != nil {
		respondError(c, errEnergy)
		return
	}
	focus, errFocus := levelQuery(c, "focus")
	if errFocus != nil {
		respondError(c, errFocus)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adaptation": adaptation.Compute(energy, focus), "source": sourcePreview})
}

func levelQuery(c *gin.Context, name string) (int, error) {
	value, errParse := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if errParse != nil || value < models.MinLevel || value > models.MaxLevel {
		return 0, usererr.Validation(name, "Pick a number from 1 to 10.")
	}
	return value, nil
}
