package tasks

import (
	"strings"
	"unicode/utf8"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/usererr"
)

// BrainStateInput is a daily check-in as submitted by the user.
type BrainStateInput struct {
	Energy int
	Focus  int
	Mood   int
	Notes  string
}

// ValidateBrainState checks a check-in and returns it with trimmed notes.
func ValidateBrainState(in BrainStateInput) (BrainStateInput, error) {
	levels := []struct {
		field string
		value int
	}{
		{"energy_level", in.Energy},
		{"focus_level", in.Focus},
		{"mood_level", in.Mood},
	}
	for _, level := range levels {
		if level.value < models.MinLevel || level.value > models.MaxLevel {
			return in, usererr.Validation(level.field, "Pick a number from 1 to 10. Any answer is okay.")
		}
	}
	in.Notes = strings.TrimSpace(in.Notes)
	if utf8.RuneCountInString(in.Notes) > models.MaxBrainStateNotesLength {
		return in, usererr.Validation("notes", "Notes can be up to 500 characters. A few words is plenty.")
	}
	return in, nil
}
