package future

import (
	"fmt"
	"sync"
)

// Status represents the lifecycle state of a Future.
type Status int

const (
	// Pending means the Future has not settled yet.
	Pending Status = iota
	// Fulfilled means the Future settled with a value.
	Fulfilled
	// Rejected means the Future settled with an error.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Future represents the eventual result of an asynchronous operation.
// Zero value is not usable; use New, Resolved or NewRejected to create instances.
type Future[T any] struct {
	mu        sync.Mutex
	status    Status
	value     T
	err       error
	onFulfill []func(T)
	onReject  []func(error)
}

// New creates a new pending Future.
func New[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolved creates a Future already fulfilled with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// NewRejected creates a Future already rejected with err.
func NewRejected[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolve settles the Future with v. It is a no-op if the Future has already
// settled. Fulfillment callbacks run synchronously in registration order;
// both callback lists are cleared afterwards.
func (f *Future[T]) Resolve(v T) {
	f.mu.Lock()
	if f.status != Pending {
		f.mu.Unlock()
		return
	}
	f.status = Fulfilled
	f.value = v
	callbacks := f.onFulfill
	f.onFulfill = nil
	f.onReject = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v)
	}
}

// Reject settles the Future with err. It is a no-op if the Future has already
// settled. Rejection callbacks run synchronously in registration order; both
// callback lists are cleared afterwards.
func (f *Future[T]) Reject(err error) {
	f.mu.Lock()
	if f.status != Pending {
		f.mu.Unlock()
		return
	}
	f.status = Rejected
	f.err = err
	callbacks := f.onReject
	f.onFulfill = nil
	f.onReject = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
}

// Status returns the current lifecycle state without blocking.
func (f *Future[T]) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Settled reports whether the Future has fulfilled or rejected.
func (f *Future[T]) Settled() bool {
	return f.Status() != Pending
}

// Result returns the settled outcome without blocking. The error is nil only
// for a fulfilled Future; for a pending Future both return values are zero.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// subscribe registers outcome callbacks. If the Future is already settled,
// the matching callback fires immediately. The mutex is released before any
// callback runs so handlers can safely re-enter the Future.
func (f *Future[T]) subscribe(onFulfill func(T), onReject func(error)) {
	f.mu.Lock()
	switch f.status {
	case Pending:
		if onFulfill != nil {
			f.onFulfill = append(f.onFulfill, onFulfill)
		}
		if onReject != nil {
			f.onReject = append(f.onReject, onReject)
		}
		f.mu.Unlock()
	case Fulfilled:
		v := f.value
		f.mu.Unlock()
		if onFulfill != nil {
			onFulfill(v)
		}
	case Rejected:
		err := f.err
		f.mu.Unlock()
		if onReject != nil {
			onReject(err)
		}
	}
}

// OnSettled registers a callback invoked once the Future settles, with the
// final outcome. Fires immediately when already settled.
func (f *Future[T]) OnSettled(cb func(T, error)) {
	f.subscribe(
		func(v T) { cb(v, nil) },
		func(err error) {
			var zero T
			cb(zero, err)
		},
	)
}

// Then derives a new Future by transforming the fulfilled value of f through
// onFulfilled. Rejection of f passes through unchanged. An error returned by
// the handler rejects the derived Future; a panic inside the handler is
// recovered and rejects it with an error wrapping ErrPanic.
func Then[T, U any](f *Future[T], onFulfilled func(T) (U, error)) *Future[U] {
	derived := New[U]()
	f.subscribe(
		func(v T) { settleFrom(derived, func() (U, error) { return onFulfilled(v) }) },
		func(err error) { derived.Reject(err) },
	)
	return derived
}

// ThenFuture derives a new Future whose outcome is adopted from the Future
// returned by onFulfilled. The derived Future subscribes to the inner one
// directly, so the handler's asynchronous continuation is flattened rather
// than nested. Rejection of f passes through unchanged.
func ThenFuture[T, U any](f *Future[T], onFulfilled func(T) *Future[U]) *Future[U] {
	derived := New[U]()
	f.subscribe(
		func(v T) {
			inner, err := callFuture(onFulfilled, v)
			if err != nil {
				derived.Reject(err)
				return
			}
			if inner == nil {
				derived.Reject(ErrNilFuture)
				return
			}
			inner.subscribe(derived.Resolve, derived.Reject)
		},
		func(err error) { derived.Reject(err) },
	)
	return derived
}

// Catch derives a new Future that recovers from rejection of f through
// onRejected. Fulfillment of f passes through unchanged. The handler may
// substitute a value or return a new error.
func (f *Future[T]) Catch(onRejected func(error) (T, error)) *Future[T] {
	derived := New[T]()
	f.subscribe(
		func(v T) { derived.Resolve(v) },
		func(err error) { settleFrom(derived, func() (T, error) { return onRejected(err) }) },
	)
	return derived
}

// Finally derives a new Future that runs onFinally on either outcome and then
// re-raises the original value or error. A panic inside onFinally replaces
// the outcome with a rejection wrapping ErrPanic.
func (f *Future[T]) Finally(onFinally func()) *Future[T] {
	derived := New[T]()
	run := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		onFinally()
		return nil
	}
	f.subscribe(
		func(v T) {
			if err := run(); err != nil {
				derived.Reject(err)
				return
			}
			derived.Resolve(v)
		},
		func(origErr error) {
			if err := run(); err != nil {
				derived.Reject(err)
				return
			}
			derived.Reject(origErr)
		},
	)
	return derived
}

// settleFrom settles d from the handler's return values, converting a handler
// panic into a rejection.
func settleFrom[U any](d *Future[U], fn func() (U, error)) {
	defer func() {
		if r := recover(); r != nil {
			d.Reject(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()
	v, err := fn()
	if err != nil {
		d.Reject(err)
		return
	}
	d.Resolve(v)
}

// callFuture invokes a Future-returning handler with panic recovery.
func callFuture[T, U any](fn func(T) *Future[U], v T) (inner *Future[U], err error) {
	defer func() {
		if r := recover(); r != nil {
			inner = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(v), nil
}
