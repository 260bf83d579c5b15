package models

import "time"

// User represents an account managed by the external identity provider.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ExternalID string `gorm:"type:varchar(255);not null;uniqueIndex"` // Identity provider subject.
	Email      string `gorm:"type:varchar(255)"`                      // Email claim, informational only.

	BrainStates  []BrainState       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owned daily check-ins.
	Tasks        []Task             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owned tasks.
	Quota        *SubscriptionQuota `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // AI request quota.
	Consumptions []QuotaConsumption `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Quota ledger.
	AIUsages     []AIUsage          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Upstream model calls.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
