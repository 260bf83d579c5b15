package models

import (
	"time"

	"gorm.io/datatypes"
)

// Task field bounds.
const (
	MinComplexity            = 1
	MaxComplexity            = 5
	MaxTaskTitleLength       = 255
	MaxTaskDescriptionLength = 1000
	MinEstimatedMinutes      = 1
	MaxEstimatedMinutes      = 1440
)

// BreakdownStep is one AI-suggested step of a task.
type BreakdownStep struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a unit of work owned by a single user.
type Task struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user.

	Title            string `gorm:"type:varchar(255);not null"`                                     // Short title.
	Description      string `gorm:"type:varchar(1000)"`                                             // Optional description.
	ComplexityLevel  int    `gorm:"not null;check:complexity_level >= 1 AND complexity_level <= 5"` // Demand rating 1-5.
	EstimatedMinutes *int   `gorm:"check:estimated_minutes >= 1 AND estimated_minutes <= 1440"`     // Optional estimate in minutes.

	IsCompleted bool       `gorm:"not null;default:false;index"` // Completion flag.
	CompletedAt *time.Time // Completion timestamp.

	AIBreakdown datatypes.JSONSlice[BreakdownStep] // Optional AI-suggested steps.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
