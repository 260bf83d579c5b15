package models

import "time"

// AIUsage records one upstream model call made on behalf of a user.
type AIUsage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64  `gorm:"not null;index:idx_ai_usages_user_created"` // Requesting user.
	TaskID *uint64 `gorm:"index"`                                     // Task the call was made for.

	Model            string `gorm:"type:varchar(128);not null"` // Upstream model name.
	Outcome          string `gorm:"type:varchar(16);not null"`  // ok, unavailable or malformed.
	PromptTokens     int64  `gorm:"not null;default:0"`         // Prompt tokens reported upstream.
	CompletionTokens int64  `gorm:"not null;default:0"`         // Completion tokens reported upstream.
	LatencyMs        int64  `gorm:"not null;default:0"`         // Round trip duration.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_ai_usages_user_created"` // Creation timestamp.
}
