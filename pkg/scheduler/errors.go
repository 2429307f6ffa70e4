package scheduler

import "errors"

var (
	// ErrInvalidState is returned when a lifecycle transition is not allowed
	// from the current state, e.g. calling Run on a stopped scheduler.
	ErrInvalidState = errors.New("scheduler: invalid state transition")

	// ErrNilCallback is returned when a nil callback is scheduled.
	ErrNilCallback = errors.New("scheduler: nil callback")
)
