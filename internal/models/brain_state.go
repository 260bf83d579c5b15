package models

import "time"

// Level bounds shared by energy, focus and mood readings.
const (
	MinLevel = 1
	MaxLevel = 10
)

// MaxBrainStateNotesLength is the maximum notes length in runes.
const MaxBrainStateNotesLength = 500

// DayLayout formats the calendar day a brain state belongs to.
const DayLayout = "2006-01-02"

// BrainState is a user's self-reported daily snapshot. One per user per day, never updated.
type BrainState struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex:uidx_brain_states_user_day"`                  // Owning user.
	Day    string `gorm:"type:varchar(10);not null;uniqueIndex:uidx_brain_states_user_day"` // UTC calendar day.

	Energy int    `gorm:"not null;check:energy >= 1 AND energy <= 10"` // Energy level 1-10.
	Focus  int    `gorm:"not null;check:focus >= 1 AND focus <= 10"`   // Focus level 1-10.
	Mood   int    `gorm:"not null;check:mood >= 1 AND mood <= 10"`     // Mood level 1-10, informational.
	Notes  string `gorm:"type:varchar(500)"`                           // Free-form notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
