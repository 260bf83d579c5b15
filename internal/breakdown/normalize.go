package breakdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Step limits applied to every model reply.
const (
	DefaultMaxSteps = 12
	MaxStepRunes    = 200
)

var (
	stepPrefix = regexp.MustCompile(`(?i)^\s*(?:[-*•]+|(?:step\s*)?\d+\s*[.):]|\[\s?\])\s*`)
	codeFence  = regexp.MustCompile("^```[a-zA-Z]*\\s*|\\s*```$")
)

// Normalize extracts steps from a model reply. It accepts {"steps": [...]},
// a bare JSON array of strings or objects, or plain numbered/bulleted text.
func Normalize(content string, maxSteps int) []string {
	if maxSteps <= 0 || maxSteps > DefaultMaxSteps {
		maxSteps = DefaultMaxSteps
	}
	content = strings.TrimSpace(codeFence.ReplaceAllString(strings.TrimSpace(content), ""))
	if content == "" {
		return nil
	}

	var raw []string
	if gjson.Valid(content) {
		raw = fromJSON(gjson.Parse(content))
	} else {
		raw = strings.Split(content, "\n")
	}

	steps := make([]string, 0, maxSteps)
	for _, line := range raw {
		step := cleanStep(line)
		if step == "" {
			continue
		}
		steps = append(steps, step)
		if len(steps) == maxSteps {
			break
		}
	}
	return steps
}

func fromJSON(parsed gjson.Result) []string {
	if parsed.IsObject() {
		for _, path := range []string{"steps", "breakdown", "subtasks"} {
			if list := parsed.Get(path); list.IsArray() {
				parsed = list
				break
			}
		}
	}
	if !parsed.IsArray() {
		if parsed.Type == gjson.String {
			return strings.Split(parsed.String(), "\n")
		}
		return nil
	}
	var out []string
	parsed.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			out = append(out, item.String())
		case item.IsObject():
			for _, field := range []string{"text", "step", "title", "description"} {
				if value := item.Get(field); value.Type == gjson.String {
					out = append(out, value.String())
					break
				}
			}
		}
		return true
	})
	return out
}

func cleanStep(line string) string {
	step := strings.TrimSpace(line)
	step = strings.TrimSpace(stepPrefix.ReplaceAllString(step, ""))
	step = strings.Trim(step, `"`)
	step = strings.TrimSpace(step)
	if utf8.RuneCountInString(step) > MaxStepRunes {
		runes := []rune(step)
		step = strings.TrimSpace(string(runes[:MaxStepRunes]))
	}
	return step
}
