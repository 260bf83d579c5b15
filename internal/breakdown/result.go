// Package breakdown asks an OpenAI-compatible model to split a task into
// small steps and records the result against the user's quota.
package breakdown

import "time"

// Kind classifies a failed breakdown call.
type Kind string

// Kind constants.
const (
	// KindUnavailable covers transport errors, timeouts and non-2xx replies.
	KindUnavailable Kind = "unavailable"
	// KindMalformed means the reply held no usable steps.
	KindMalformed Kind = "malformed"
)

// Usage describes the upstream call behind a Result.
type Usage struct {
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	Latency          time.Duration
}

// Result is either a list of steps or a failure kind, never both.
type Result struct {
	Steps []string
	Err   Kind
	Usage Usage
}

// OK reports whether the call produced steps.
func (r Result) OK() bool {
	return r.Err == "" && len(r.Steps) > 0
}

func failed(kind Kind, usage Usage) Result {
	return Result{Err: kind, Usage: usage}
}
