package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usage"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultUsageDays = 30
	maxUsageDays     = 365
)

// UsageHandler reports AI usage per user.
type UsageHandler struct {
	users    store.UserStore
	recorder *usage.GormRecorder
	now      func() time.Time
}

// NewUsageHandler constructs a UsageHandler.
func NewUsageHandler(users store.UserStore, recorder *usage.GormRecorder) *UsageHandler {
	return &UsageHandler{users: users, recorder: recorder, now: time.Now}
}

// Get summarizes a user's model calls over the last ?days (default 30).
func (h *UsageHandler) Get(c *gin.Context) {
	userID, ok := lookupUser(c, h.users)
	if !ok {
		return
	}
	days := defaultUsageDays
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse != nil || parsed < 1 || parsed > maxUsageDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = parsed
	}
	since := h.now().UTC().AddDate(0, 0, -days)
	summary, err := h.recorder.Summarize(c.Request.Context(), userID, since)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("admin: summarize usage failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summarize usage failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"days":    days,
		"since":   since,
		"usage":   summary,
	})
}
