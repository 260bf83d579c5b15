// Package usage persists upstream AI call records and summarizes them.
package usage

import (
	"context"
	"errors"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const recordTimeout = 5 * time.Second

// Outcome values stored with each record.
const (
	OutcomeOK = "ok"
)

// Entry is one model call to record.
type Entry struct {
	UserID           uint64
	TaskID           *uint64
	Model            string
	Outcome          string
	PromptTokens     int64
	CompletionTokens int64
	Latency          time.Duration
}

// Summary aggregates usage for one user over a window.
type Summary struct {
	Requests         int64 `json:"requests"`
	Failures         int64 `json:"failures"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	AvgLatencyMs     int64 `json:"avg_latency_ms"`
}

// GormRecorder writes usage rows through GORM.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder constructs a GormRecorder backed by db.
func NewGormRecorder(db *gorm.DB) *GormRecorder { return &GormRecorder{db: db} }

// Record stores the entry. It runs detached from ctx cancellation so a client
// hanging up does not drop the row; failures are logged, not returned.
func (r *GormRecorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.db == nil || entry.UserID == 0 {
		return
	}
	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	outcome := entry.Outcome
	if outcome == "" {
		outcome = OutcomeOK
	}
	row := models.AIUsage{
		UserID:           entry.UserID,
		TaskID:           entry.TaskID,
		Model:            entry.Model,
		Outcome:          outcome,
		PromptTokens:     max(entry.PromptTokens, 0),
		CompletionTokens: max(entry.CompletionTokens, 0),
		LatencyMs:        entry.Latency.Milliseconds(),
	}
	if errCreate := r.db.WithContext(dbCtx).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).WithField("user_id", entry.UserID).Warn("usage: record failed")
	}
}

// Summarize aggregates the user's usage since the given instant.
func (r *GormRecorder) Summarize(ctx context.Context, userID uint64, since time.Time) (Summary, error) {
	if r == nil || r.db == nil {
		return Summary{}, errors.New("usage: nil recorder")
	}
	var out struct {
		Requests         int64
		Failures         int64
		PromptTokens     int64
		CompletionTokens int64
		LatencyMs        int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.AIUsage{}).
		Select(`COUNT(*) AS requests,
			COALESCE(SUM(CASE WHEN outcome <> ? THEN 1 ELSE 0 END), 0) AS failures,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens,
			COALESCE(SUM(latency_ms), 0) AS latency_ms`, OutcomeOK).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Scan(&out).Error; err != nil {
		return Summary{}, err
	}
	summary := Summary{
		Requests:         out.Requests,
		Failures:         out.Failures,
		PromptTokens:     out.PromptTokens,
		CompletionTokens: out.CompletionTokens,
	}
	if out.Requests > 0 {
		summary.AvgLatencyMs = out.LatencyMs / out.Requests
	}
	return summary, nil
}
