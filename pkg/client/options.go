package client

import (
	"log/slog"
	"time"

	"github.com/pulsekit/pulsekit/pkg/scheduler"
)

type clientOptions struct {
	sched    *scheduler.Scheduler
	logger   *slog.Logger
	breaker  *CircuitBreaker
	cache    Cache
	waitPoll time.Duration
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		sched:    scheduler.New(),
		logger:   slog.Default(),
		waitPoll: 500 * time.Microsecond,
	}
}

// Option configures client creation.
type Option func(*clientOptions)

// WithScheduler shares an existing tick loop instead of creating one per
// client.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(o *clientOptions) {
		if s != nil {
			o.sched = s
		}
	}
}

// WithLogger sets the structured logger for request lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCircuitBreaker guards the transport with cb. Reuse one instance per
// remote service to accumulate failure state across requests.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(o *clientOptions) {
		o.breaker = cb
	}
}

// WithCache consults cache for GET requests before hitting the transport
// and fills it from successful responses. The cache's internals are the
// collaborator's concern.
func WithCache(cache Cache) Option {
	return func(o *clientOptions) {
		o.cache = cache
	}
}

// WithWaitPollInterval sets the sleep between Wait's scheduler pumps.
func WithWaitPollInterval(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.waitPoll = d
		}
	}
}
