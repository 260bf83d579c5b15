// Package adaptation derives UI presets and the task complexity ceiling from a
// daily brain state.
package adaptation

import "github.com/brainpace/brainpace/internal/models"

// UILevel is the interface intensity tier.
type UILevel string

// UILevel constants.
const (
	UILevelLow    UILevel = "low"
	UILevelMedium UILevel = "medium"
	UILevelHigh   UILevel = "high"
)

// Tone is the register used for encouragement copy.
type Tone string

// Tone constants.
const (
	ToneGentle     Tone = "gentle"
	ToneSupportive Tone = "supportive"
	ToneEnergetic  Tone = "energetic"
)

// Result is the adaptation applied to the UI and task list.
type Result struct {
	UILevel           UILevel `json:"uiLevel"`
	MaxTaskComplexity int     `json:"maxTaskComplexity"`
	Spacing           int     `json:"spacing"`
	TouchTargetSize   int     `json:"touchTargetSize"`
	EncouragementTone Tone    `json:"encouragementTone"`
}

type uiPreset struct {
	spacing     int
	touchTarget int
	tone        Tone
}

var presets = map[UILevel]uiPreset{
	UILevelLow:    {spacing: 24, touchTarget: 56, tone: ToneGentle},
	UILevelMedium: {spacing: 16, touchTarget: 48, tone: ToneSupportive},
	UILevelHigh:   {spacing: 12, touchTarget: 44, tone: ToneEnergetic},
}

type tierRow struct {
	level      UILevel
	complexity int
}

// table is indexed by the floored average of energy and focus (1..10).
var table = [models.MaxLevel + 1]tierRow{
	1:  {UILevelLow, 1},
	2:  {UILevelLow, 1},
	3:  {UILevelLow, 1},
	4:  {UILevelMedium, 2},
	5:  {UILevelMedium, 2},
	6:  {UILevelMedium, 3},
	7:  {UILevelHigh, 4},
	8:  {UILevelHigh, 4},
	9:  {UILevelHigh, 5},
	10: {UILevelHigh, 5},
}

// defaultAverage is used when no brain state exists for the day.
const defaultAverage = 6

// Compute maps energy and focus to an adaptation. Out-of-range inputs are clamped.
func Compute(energy, focus int) Result {
	// Integer division: half points round down to the gentler tier.
	return fromAverage((clamp(energy) + clamp(focus)) / 2)
}

// Default is the adaptation used when the user has not checked in today.
func Default() Result {
	return fromAverage(defaultAverage)
}

// FromState computes the adaptation for a recorded state, or Default when nil.
func FromState(state *models.BrainState) Result {
	if state == nil {
		return Default()
	}
	return Compute(state.Energy, state.Focus)
}

func fromAverage(a int) Result {
	row := table[clamp(a)]
	p := presets[row.level]
	return Result{
		UILevel:           row.level,
		MaxTaskComplexity: row.complexity,
		Spacing:           p.spacing,
		TouchTargetSize:   p.touchTarget,
		EncouragementTone: p.tone,
	}
}

func clamp(v int) int {
	if v < models.MinLevel {
		return models.MinLevel
	}
	if v > models.MaxLevel {
		return models.MaxLevel
	}
	return v
}
