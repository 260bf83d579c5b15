package tasks

import (
	"strings"
	"testing"

	"github.com/brainpace/brainpace/internal/usererr"
)

func intPtr(v int) *int { return &v }

func TestValidateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		input Input
		field string
	}{
		{"empty title", Input{Title: "", ComplexityLevel: 2}, "title"},
		{"long title", Input{Title: strings.Repeat("a", 256), ComplexityLevel: 2}, "title"},
		{"long description", Input{Title: "ok", Description: strings.Repeat("d", 1001), ComplexityLevel: 2}, "description"},
		{"complexity zero", Input{Title: "ok", ComplexityLevel: 0}, "complexity_level"},
		{"complexity six", Input{Title: "ok", ComplexityLevel: 6}, "complexity_level"},
		{"estimate zero", Input{Title: "ok", ComplexityLevel: 1, EstimatedMinutes: intPtr(0)}, "estimated_minutes"},
		{"estimate too long", Input{Title: "ok", ComplexityLevel: 1, EstimatedMinutes: intPtr(1441)}, "estimated_minutes"},
	}
	for _, tc := range cases {
		err := ValidateTask(tc.input.Normalize())
		if !usererr.Is(err, usererr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		_, body := usererr.Render(err)
		if body.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, body.Field)
		}
	}
}

func TestValidateAcceptsBounds(t *testing.T) {
	ok := []Input{
		{Title: "a", ComplexityLevel: 1},
		{Title: strings.Repeat("a", 255), Description: strings.Repeat("d", 1000), ComplexityLevel: 5, EstimatedMinutes: intPtr(1440)},
		{Title: "walk", ComplexityLevel: 3, EstimatedMinutes: intPtr(1)},
	}
	for _, in := range ok {
		if err := ValidateTask(in.Normalize()); err != nil {
			t.Fatalf("expected %+v to be valid, got %v", in, err)
		}
	}
}

func TestNormalizeTrimsWhitespaceOnlyTitle(t *testing.T) {
	err := ValidateTask(Input{Title: "   ", ComplexityLevel: 1}.Normalize())
	if !usererr.Is(err, usererr.KindValidation) {
		t.Fatalf("expected whitespace title to be rejected, got %v", err)
	}
}

func TestValidatePatch(t *testing.T) {
	title := "  tidy desk  "
	patched, err := ValidatePatch(Patch{Title: &title})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if *patched.Title != "tidy desk" {
		t.Fatalf("expected trimmed title, got %q", *patched.Title)
	}

	six := 6
	if _, errPatch := ValidatePatch(Patch{ComplexityLevel: &six}); !usererr.Is(errPatch, usererr.KindValidation) {
		t.Fatalf("expected complexity 6 to be rejected, got %v", errPatch)
	}
	if !(Patch{}).Empty() {
		t.Fatalf("expected zero patch to be empty")
	}
}
