package breakdown

import (
	"fmt"
	"strings"

	"github.com/brainpace/brainpace/internal/adaptation"
	"github.com/brainpace/brainpace/internal/models"
)

const systemPrompt = `You help people with ADHD and other neurodivergent brains start tasks.
Split the task into small, concrete, physical next steps. Each step should take
under ten minutes and start with a verb. Match the number and size of steps to
the person's current energy and focus. Be warm and never judgmental.

Reply ONLY with JSON in this exact shape:
{"steps": ["...", "..."]}
No extra text.`

// Request is what the model sees about a task.
type Request struct {
	Title            string
	Description      string
	ComplexityLevel  int
	EstimatedMinutes *int
	State            *models.BrainState
	Adaptation       adaptation.Result
}

func buildUserPrompt(req Request, maxSteps int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", strings.TrimSpace(req.Title))
	if description := strings.TrimSpace(req.Description); description != "" {
		fmt.Fprintf(&b, "Details: %s\n", description)
	}
	fmt.Fprintf(&b, "Complexity (1-5): %d\n", req.ComplexityLevel)
	if req.EstimatedMinutes != nil {
		fmt.Fprintf(&b, "Estimated minutes: %d\n", *req.EstimatedMinutes)
	}
	if req.State != nil {
		fmt.Fprintf(&b, "Today's energy %d/10, focus %d/10, mood %d/10.\n", req.State.Energy, req.State.Focus, req.State.Mood)
	} else {
		b.WriteString("No check-in today; assume average energy and focus.\n")
	}
	fmt.Fprintf(&b, "Interface level: %s. Tone: %s.\n", req.Adaptation.UILevel, req.Adaptation.EncouragementTone)
	fmt.Fprintf(&b, "Give at most %d steps.", maxSteps)
	return b.String()
}
