package future

import (
	"errors"
	"fmt"
)

var (
	// ErrPanic wraps a recovered panic from a chained handler.
	ErrPanic = errors.New("future: handler panicked")

	// ErrNilFuture is returned when a ThenFuture handler returns a nil Future.
	ErrNilFuture = errors.New("future: handler returned nil future")
)

// AggregateError is the rejection reason produced by Any when every input
// rejects. Errors holds one reason per input, in input order.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("all %d futures rejected", len(e.Errors))
}

// Unwrap exposes the individual reasons to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}
