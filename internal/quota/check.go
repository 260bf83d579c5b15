// Package quota enforces the monthly AI request allowance per user.
package quota

// State describes whether a user can still make AI requests this period.
type State string

// State constants.
const (
	StateAvailable State = "available"
	StateExhausted State = "exhausted"
)

// Usage is a snapshot of a user's counter.
type Usage struct {
	Used  int
	Limit int
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool  `json:"allowed"`
	Remaining int   `json:"remaining"`
	State     State `json:"state"`
}

// Check decides whether another AI request fits in the allowance. It never mutates anything.
func Check(u Usage) Decision {
	remaining := u.Limit - u.Used
	if remaining < 0 {
		remaining = 0
	}
	if u.Used < u.Limit {
		return Decision{Allowed: true, Remaining: remaining, State: StateAvailable}
	}
	return Decision{Allowed: false, Remaining: remaining, State: StateExhausted}
}
