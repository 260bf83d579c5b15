package tasks

import (
	"strings"
	"unicode/utf8"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/usererr"
)

// Input is the writable part of a task.
type Input struct {
	Title            string
	Description      string
	ComplexityLevel  int
	EstimatedMinutes *int
}

// Patch is a partial task update; nil fields are left unchanged.
type Patch struct {
	Title            *string
	Description      *string
	ComplexityLevel  *int
	EstimatedMinutes *int
	ClearEstimate    bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ComplexityLevel == nil &&
		p.EstimatedMinutes == nil && !p.ClearEstimate
}

// Normalize trims the text fields of the input.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ValidateTask checks a new task. The input is expected to be normalized.
func ValidateTask(in Input) error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	if err := validateComplexity(in.ComplexityLevel); err != nil {
		return err
	}
	return validateEstimate(in.EstimatedMinutes)
}

// ValidatePatch checks the fields present in a patch and returns it normalized.
func ValidatePatch(p Patch) (Patch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if err := validateTitle(title); err != nil {
			return p, err
		}
		p.Title = &title
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		if err := validateDescription(description); err != nil {
			return p, err
		}
		p.Description = &description
	}
	if p.ComplexityLevel != nil {
		if err := validateComplexity(*p.ComplexityLevel); err != nil {
			return p, err
		}
	}
	if p.EstimatedMinutes != nil {
		if err := validateEstimate(p.EstimatedMinutes); err != nil {
			return p, err
		}
	}
	return p, nil
}

func validateTitle(title string) error {
	if title == "" {
		return usererr.Validation("title", "Give your task a short title so future you knows what it is.")
	}
	if utf8.RuneCountInString(title) > models.MaxTaskTitleLength {
		return usererr.Validation("title", "That title is a bit long. Try keeping it under 255 characters.")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > models.MaxTaskDescriptionLength {
		return usererr.Validation("description", "The description is a bit long. Try keeping it under 1000 characters.")
	}
	return nil
}

func validateComplexity(level int) error {
	if level < models.MinComplexity || level > models.MaxComplexity {
		return usererr.Validation("complexity_level", "Pick a complexity between 1 and 5.")
	}
	return nil
}

func validateEstimate(minutes *int) error {
	if minutes == nil {
		return nil
	}
	if *minutes < models.MinEstimatedMinutes || *minutes > models.MaxEstimatedMinutes {
		return usererr.Validation("estimated_minutes", "Estimates can be anywhere from 1 minute to a full day (1440 minutes).")
	}
	return nil
}
