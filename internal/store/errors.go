package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing row or a row owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports a unique constraint hit.
	ErrAlreadyExists = errors.New("already exists")

	errNotInitialized = errors.New("store: not initialized")
)

// OpError annotates a storage failure with the operation and resource.
type OpError struct {
	Op       string
	Resource string
	ID       uint64
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID > 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrapUserErr(op string, id uint64, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Resource: "user", ID: id, Err: err}
}

func wrapTaskErr(op string, id uint64, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Resource: "task", ID: id, Err: err}
}

func wrapBrainStateErr(op string, id uint64, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Resource: "brain state", ID: id, Err: err}
}
