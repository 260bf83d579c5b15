package tasks

import (
	"strings"
	"testing"

	"github.com/brainpace/brainpace/internal/usererr"
)

func TestValidateBrainState(t *testing.T) {
	got, err := ValidateBrainState(BrainStateInput{Energy: 1, Focus: 10, Mood: 5, Notes: "  tired  "})
	if err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if got.Notes != "tired" {
		t.Fatalf("expected trimmed notes, got %q", got.Notes)
	}

	cases := []struct {
		input BrainStateInput
		field string
	}{
		{BrainStateInput{Energy: 0, Focus: 5, Mood: 5}, "energy_level"},
		{BrainStateInput{Energy: 5, Focus: 11, Mood: 5}, "focus_level"},
		{BrainStateInput{Energy: 5, Focus: 5, Mood: -1}, "mood_level"},
		{BrainStateInput{Energy: 5, Focus: 5, Mood: 5, Notes: strings.Repeat("n", 501)}, "notes"},
	}
	for _, tc := range cases {
		_, errState := ValidateBrainState(tc.input)
		if !usererr.Is(errState, usererr.KindValidation) {
			t.Fatalf("%+v: expected validation error, got %v", tc.input, errState)
		}
		if _, body := usererr.Render(errState); body.Field != tc.field {
			t.Fatalf("%+v: expected field %q, got %q", tc.input, tc.field, body.Field)
		}
	}
}
