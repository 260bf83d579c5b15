package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/tasks"
	"github.com/brainpace/brainpace/internal/usererr"
	"github.com/gin-gonic/gin"
)

// BrainStateHandler serves daily check-ins.
type BrainStateHandler struct {
	states store.BrainStateStore
	now    func() time.Time
}

// NewBrainStateHandler constructs a BrainStateHandler.
func NewBrainStateHandler(states store.BrainStateStore) *BrainStateHandler {
	return &BrainStateHandler{states: states, now: time.Now}
}

// createBrainStateRequest defines the request body for a check-in.
type createBrainStateRequest struct {
	Energy *int   `json:"energy_level"`
	Focus  *int   `json:"focus_level"`
	Mood   *int   `json:"mood_level"`
	Notes  string `json:"notes"`
}

// Create records today's check-in.
func (h *BrainStateHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body createBrainStateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, invalidBody(errBind))
		return
	}
	in := tasks.BrainStateInput{Notes: body.Notes}
	for _, level := range []struct {
		field string
		value *int
		dst   *int
	}{
		{"energy_level", body.Energy, &in.Energy},
		{"focus_level", body.Focus, &in.Focus},
		{"mood_level", body.Mood, &in.Mood},
	} {
		if level.value == nil {
			respondError(c, usererr.Validation(level.field, "Pick a number from 1 to 10. Any answer is okay."))
			return
		}
		*level.dst = *level.value
	}
	in, errValidate := tasks.ValidateBrainState(in)
	if errValidate != nil {
		respondError(c, errValidate)
		return
	}

	state, err := h.states.CreateBrainState(c.Request.Context(), userID, in, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"brain_state": brainStateJSON(state)})
}

// Today returns today's check-in.
func (h *BrainStateHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	state, err := h.states.TodayBrainState(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	if state == nil {
		respondError(c, &usererr.Error{
			Kind:    usererr.KindNotFound,
			Message: "No check-in yet today. Whenever you're ready is fine.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"brain_state": brainStateJSON(state)})
}

// List returns recent check-ins, newest first.
func (h *BrainStateHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse != nil || parsed < 1 || parsed > store.MaxBrainStateHistory {
			respondError(c, usererr.Validation("limit", "History can show between 1 and 365 days."))
			return
		}
		limit = parsed
	}
	states, err := h.states.ListBrainStates(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(states))
	for i := range states {
		out = append(out, brainStateJSON(&states[i]))
	}
	c.JSON(http.StatusOK, gin.H{"brain_states": out})
}

func brainStateJSON(state *models.BrainState) gin.H {
	return gin.H{
		"id":           state.ID,
		"day":          state.Day,
		"energy_level": state.Energy,
		"focus_level":  state.Focus,
		"mood_level":   state.Mood,
		"notes":        state.Notes,
		"created_at":   state.CreatedAt,
	}
}
