package models

import "time"

// Tier identifies a subscription level.
type Tier string

// Tier constants define subscription levels.
const (
	// TierFree is the default tier.
	TierFree Tier = "free"
	// TierPremium is the paid tier.
	TierPremium Tier = "premium"
)

// Valid reports whether the tier is a known value.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// SubscriptionQuota tracks a user's monthly AI request allowance.
type SubscriptionQuota struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user.

	Tier          Tier      `gorm:"type:varchar(16);not null;check:tier IN ('free','premium')"` // Subscription tier.
	RequestsUsed  int       `gorm:"not null;default:0;check:requests_used >= 0"`                // Requests consumed this period.
	RequestsLimit int       `gorm:"not null;check:requests_limit > 0"`                          // Requests allowed per period.
	ResetDate     time.Time `gorm:"not null;index"`                                             // Day the counter resets (UTC midnight).

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// QuotaConsumption records a consumed AI request under an idempotency key.
type QuotaConsumption struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID         uint64  `gorm:"not null;uniqueIndex:uidx_quota_consumptions_user_key"`                   // Owning user.
	IdempotencyKey string  `gorm:"type:varchar(128);not null;uniqueIndex:uidx_quota_consumptions_user_key"` // Caller-supplied key.
	TaskID         *uint64 `gorm:"index"`                                                                   // Task the request was made for.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
