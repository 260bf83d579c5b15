// Package usererr maps every failure to a gentle, pre-authored message and a
// next step the user can take. Raw error text never reaches the client.
package usererr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a user-facing failure.
type Kind string

// Kind constants form a flat taxonomy.
const (
	KindValidation    Kind = "validation"
	KindNetwork       Kind = "network"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindRateLimited   Kind = "rate_limited"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindUnauthorized  Kind = "unauthorized"
	KindInternal      Kind = "internal"
)

// NextStep names the action offered to the user.
type NextStep string

// NextStep constants.
const (
	StepEdit    NextStep = "edit"
	StepRetry   NextStep = "retry"
	StepWait    NextStep = "wait"
	StepUpgrade NextStep = "upgrade"
	StepSignIn  NextStep = "sign_in"
)

type preset struct {
	status  int
	message string
	step    NextStep
}

var presets = map[Kind]preset{
	KindValidation:    {http.StatusBadRequest, "Something here needs a small tweak. Take your time and try again.", StepEdit},
	KindNetwork:       {http.StatusServiceUnavailable, "This is temporarily unavailable. Nothing was lost, so feel free to try again in a moment.", StepRetry},
	KindQuotaExceeded: {http.StatusTooManyRequests, "You've used all your AI helps for this month. They refresh soon, or you can upgrade for more.", StepUpgrade},
	KindRateLimited:   {http.StatusTooManyRequests, "That was quick! Give it a second and try again.", StepWait},
	KindNotFound:      {http.StatusNotFound, "We couldn't find that one. It may have been removed already.", StepRetry},
	KindConflict:      {http.StatusConflict, "You've already checked in today. Nice work showing up.", StepWait},
	KindUnauthorized:  {http.StatusUnauthorized, "Please sign in again to keep going.", StepSignIn},
	KindInternal:      {http.StatusInternalServerError, "Something went wrong on our side. Please try again in a little while.", StepRetry},
}

// Error is a classified failure carrying an optional field name and cause.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind wrapping cause.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// Validation builds a validation error for field with a specific gentle message.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// KindOf returns the kind of err, or KindInternal when unclassified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		return classified.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Response is the JSON body sent for a failure.
type Response struct {
	Error    string   `json:"error"`
	Kind     Kind     `json:"kind"`
	NextStep NextStep `json:"next_step"`
	Field    string   `json:"field,omitempty"`
}

// Render returns the HTTP status and body for err.
func Render(err error) (int, Response) {
	kind := KindOf(err)
	p, ok := presets[kind]
	if !ok {
		kind = KindInternal
		p = presets[KindInternal]
	}
	resp := Response{Error: p.message, Kind: kind, NextStep: p.step}

	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		resp.Field = classified.Field
		if classified.Message != "" {
			resp.Error = classified.Message
		}
	}
	return p.status, resp
}
