package scheduler

import (
	"log/slog"
	"time"
)

type options struct {
	tickInterval  time.Duration
	logger        *slog.Logger
	maxAvgTick    time.Duration
	maxPendingOps int
}

func defaultOptions() *options {
	return &options{
		tickInterval:  time.Millisecond,
		logger:        slog.Default(),
		maxAvgTick:    100 * time.Millisecond,
		maxPendingOps: 1000,
	}
}

// Option configures scheduler creation.
type Option func(*options)

// WithTickInterval sets the inter-tick delay used by Run. The delay also
// bounds timer granularity: timers are checked once per tick.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

// WithLogger sets the structured logger used for lifecycle events and
// recovered callback panics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHealthBounds sets the thresholds used by Healthy: the maximum average
// tick duration and the maximum pending operation backlog.
func WithHealthBounds(maxAvgTick time.Duration, maxPendingOps int) Option {
	return func(o *options) {
		if maxAvgTick > 0 {
			o.maxAvgTick = maxAvgTick
		}
		if maxPendingOps > 0 {
			o.maxPendingOps = maxPendingOps
		}
	}
}
