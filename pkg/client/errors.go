package client

import "errors"

// Domain errors for the async facade, designed for wrapping with context and
// classification via errors.Is. Transport-level errors are never wrapped;
// they pass through to Futures unmodified.
var (
	ErrValidation   = errors.New("client: validation failed")
	ErrTimeout      = errors.New("client: deadline exceeded")
	ErrCancelled    = errors.New("client: operation cancelled")
	ErrCircuitOpen  = errors.New("client: circuit breaker is open")
	ErrNilTransport = errors.New("client: transport is required")
)

// IsCancelled reports whether err stems from CancelAllPending.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsTimeout reports whether err stems from a Timeout race or a Wait deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
