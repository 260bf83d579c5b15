package breakdown

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeShapes(t *testing.T) {
	want := []string{"Fill a glass of water", "Put the dishes in the sink"}
	cases := map[string]string{
		"object":       `{"steps": ["Fill a glass of water", "Put the dishes in the sink"]}`,
		"bare array":   `["Fill a glass of water", " Put the dishes in the sink "]`,
		"object items": `{"steps": [{"text": "Fill a glass of water"}, {"step": "Put the dishes in the sink"}]}`,
		"numbered":     "1. Fill a glass of water\n2) Put the dishes in the sink\n",
		"bulleted":     "- Fill a glass of water\n\n* Put the dishes in the sink",
		"step labels":  "Step 1: Fill a glass of water\nStep 2: Put the dishes in the sink",
		"fenced":       "```json\n{\"steps\": [\"Fill a glass of water\", \"Put the dishes in the sink\"]}\n```",
	}
	for name, content := range cases {
		if got := Normalize(content, 12); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestNormalizeCapsStepsAndLength(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "- do a thing")
	}
	if got := Normalize(strings.Join(lines, "\n"), 0); len(got) != DefaultMaxSteps {
		t.Fatalf("expected %d steps, got %d", DefaultMaxSteps, len(got))
	}
	if got := Normalize(strings.Join(lines, "\n"), 3); len(got) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(got))
	}

	long := Normalize(`["`+strings.Repeat("é", 300)+`"]`, 12)
	if len(long) != 1 || utf8.RuneCountInString(long[0]) != MaxStepRunes {
		t.Fatalf("expected one step of %d runes, got %v", MaxStepRunes, long)
	}
}

func TestNormalizeNoSteps(t *testing.T) {
	for _, content := range []string{"", "   ", `{"steps": []}`, `{"answer": 42}`, `[1, 2, 3]`, "-\n*\n"} {
		if got := Normalize(content, 12); len(got) != 0 {
			t.Fatalf("expected no steps for %q, got %q", content, got)
		}
	}
}
