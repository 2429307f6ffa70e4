package client

import (
	"fmt"
	"time"

	"github.com/pulsekit/pulsekit/pkg/future"
)

// Timeout races f against a timer that rejects with ErrTimeout after d.
// The losing side is not cancelled: it keeps running and its eventual
// outcome is discarded by the winner's settle-once guard.
//
// Generic helpers live at package level because Go methods cannot introduce
// type parameters.
func Timeout[T any](c *Client, f *future.Future[T], d time.Duration) *future.Future[T] {
	timer := future.New[T]()
	id := c.sched.SetTimeout(func() {
		timer.Reject(fmt.Errorf("%w: no result within %s", ErrTimeout, d))
	}, d)

	out := future.Race([]*future.Future[T]{f, timer})
	out.OnSettled(func(T, error) {
		// no-op when the timer already fired
		c.sched.ClearTimeout(id)
	})
	return out
}

// Retry invokes op and, on rejection with attempts remaining, reschedules it
// through a scheduler timer with linear backoff (delay × attempt number).
// The first success resolves the returned Future immediately; exhaustion
// rejects it with the last error.
func Retry[T any](c *Client, op func() *future.Future[T], maxAttempts int, delay time.Duration) *future.Future[T] {
	return RetryWithBackoff(c, op, maxAttempts, LinearBackoff{Interval: delay})
}

// RetryWithBackoff is Retry with a pluggable backoff strategy.
func RetryWithBackoff[T any](c *Client, op func() *future.Future[T], maxAttempts int, strategy BackoffStrategy) *future.Future[T] {
	out := future.New[T]()

	if op == nil || maxAttempts <= 0 {
		out.Reject(fmt.Errorf("%w: retry requires an operation and a positive attempt count", ErrValidation))
		return out
	}
	if strategy == nil {
		strategy = LinearBackoff{}
	}

	var attempt func(n int)
	attempt = func(n int) {
		f := op()
		if f == nil {
			out.Reject(future.ErrNilFuture)
			return
		}
		f.OnSettled(func(v T, err error) {
			if err == nil {
				out.Resolve(v)
				return
			}
			if n >= maxAttempts {
				out.Reject(err)
				return
			}
			c.sched.SetTimeout(func() { attempt(n + 1) }, strategy.NextInterval(n))
		})
	}
	attempt(1)

	return out
}

// RequestWithRetry is RequestAsync wrapped in Retry. Each attempt is tracked
// as its own operation carrying the retry count of the attempt that created
// it.
func (c *Client) RequestWithRetry(method, path string, opts *RequestOptions, maxAttempts int, delay time.Duration) *future.Future[*Response] {
	attempt := 0
	return Retry(c, func() *future.Future[*Response] {
		attempt++
		return c.requestAttempt(method, path, opts, attempt-1)
	}, maxAttempts, delay)
}

// Delay returns a Future that resolves with no value after d, built on the
// scheduler's timer queue.
func Delay(c *Client, d time.Duration) *future.Future[struct{}] {
	out := future.New[struct{}]()
	c.sched.SetTimeout(func() { out.Resolve(struct{}{}) }, d)
	return out
}

// Wait is the synchronous bridge: it repeatedly drives the scheduler's Tick,
// interleaved with a short real sleep to avoid busy-spinning, until f
// settles or the elapsed wall clock exceeds timeout (then ErrTimeout).
// A non-positive timeout waits indefinitely. Returns the fulfilled value or
// the rejection error.
func Wait[T any](c *Client, f *future.Future[T], timeout time.Duration) (T, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for !f.Settled() {
		c.sched.Tick()
		if f.Settled() {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			var zero T
			return zero, fmt.Errorf("%w: future not settled within %s", ErrTimeout, timeout)
		}
		time.Sleep(c.waitPoll)
	}

	v, err := f.Result()
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
