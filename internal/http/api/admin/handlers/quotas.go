package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QuotaHandler handles admin quota endpoints.
type QuotaHandler struct {
	db    *gorm.DB
	users store.UserStore
	gate  *quota.Gate
	now   func() time.Time
}

// NewQuotaHandler constructs a QuotaHandler.
func NewQuotaHandler(db *gorm.DB, users store.UserStore, gate *quota.Gate) *QuotaHandler {
	return &QuotaHandler{db: db, users: users, gate: gate, now: time.Now}
}

// quotaListQuery defines filters for the quota list view.
type quotaListQuery struct {
	Page  int    `form:"page,default=1"`   // Page number.
	Limit int    `form:"limit,default=20"` // Page size.
	Tier  string `form:"tier"`             // Tier filter.
	State string `form:"state"`            // available or exhausted.
}

// setTierRequest defines the request body for tier changes.
type setTierRequest struct {
	Tier string `json:"tier"`
}

// List returns quota rows with paging and filters.
func (h *QuotaHandler) List(c *gin.Context) {
	var q quotaListQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	base := h.db.WithContext(c.Request.Context()).Model(&models.SubscriptionQuota{})
	if tierQ := strings.TrimSpace(q.Tier); tierQ != "" {
		if !models.Tier(tierQ).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier"})
			return
		}
		base = base.Where("tier = ?", tierQ)
	}
	switch quota.State(strings.TrimSpace(q.State)) {
	case "":
	case quota.StateExhausted:
		base = base.Where("requests_used >= requests_limit")
	case quota.StateAvailable:
		base = base.Where("requests_used < requests_limit")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	var total int64
	if errCount := base.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count quotas failed"})
		return
	}

	var rows []models.SubscriptionQuota
	if errFind := base.
		Order("user_id ASC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list quotas failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, quotaRow(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"quotas": out,
		"total":  total,
		"page":   q.Page,
		"limit":  q.Limit,
	})
}

// Get returns the current quota for one user, with free-tier defaults when no row exists yet.
func (h *QuotaHandler) Get(c *gin.Context) {
	userID, ok := h.lookupUser(c)
	if !ok {
		return
	}
	_, row, err := h.gate.Check(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("admin: load quota failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load quota failed"})
		return
	}
	c.JSON(http.StatusOK, quotaRow(row))
}

// SetTier switches a user between free and premium.
func (h *QuotaHandler) SetTier(c *gin.Context) {
	userID, ok := h.lookupUser(c)
	if !ok {
		return
	}
	var body setTierRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	tier := models.Tier(strings.ToLower(strings.TrimSpace(body.Tier)))
	if !tier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tier must be free or premium"})
		return
	}
	row, err := h.gate.SetTier(c.Request.Context(), userID, tier)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("admin: set tier failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "set tier failed"})
		return
	}
	log.WithFields(log.Fields{"user_id": userID, "tier": tier}).Info("admin: tier changed")
	c.JSON(http.StatusOK, quotaRow(row))
}

// ResetDue runs the monthly reset immediately.
func (h *QuotaHandler) ResetDue(c *gin.Context) {
	n, err := h.gate.ResetDue(c.Request.Context(), h.now())
	if err != nil {
		log.WithError(err).Error("admin: reset quotas failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset quotas failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": n})
}

func (h *QuotaHandler) lookupUser(c *gin.Context) (uint64, bool) {
	return lookupUser(c, h.users)
}

// lookupUser parses the :id param and confirms the user exists.
func lookupUser(c *gin.Context, users store.UserStore) (uint64, bool) {
	userID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	if _, errUser := users.GetUser(c.Request.Context(), userID); errUser != nil {
		if errors.Is(errUser, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return 0, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load user failed"})
		return 0, false
	}
	return userID, true
}

func quotaRow(row *models.SubscriptionQuota) gin.H {
	decision := quota.Check(quota.Usage{Used: row.RequestsUsed, Limit: row.RequestsLimit})
	return gin.H{
		"user_id":        row.UserID,
		"tier":           row.Tier,
		"requests_used":  row.RequestsUsed,
		"requests_limit": row.RequestsLimit,
		"remaining":      decision.Remaining,
		"state":          decision.State,
		"reset_date":     row.ResetDate,
		"updated_at":     row.UpdatedAt,
	}
}
