package scheduler

import "time"

// Config holds environment-driven scheduler settings. Load it with the
// config package and pass it to NewFromConfig.
type Config struct {
	TickInterval        time.Duration `env:"PULSE_TICK_INTERVAL" envDefault:"1ms"`
	HealthMaxAvgTick    time.Duration `env:"PULSE_HEALTH_MAX_AVG_TICK" envDefault:"100ms"`
	HealthMaxPendingOps int           `env:"PULSE_HEALTH_MAX_PENDING_OPS" envDefault:"1000"`
}

// NewFromConfig creates a scheduler from cfg. Explicit options take
// precedence over configuration values.
func NewFromConfig(cfg Config, opts ...Option) *Scheduler {
	base := []Option{
		WithTickInterval(cfg.TickInterval),
		WithHealthBounds(cfg.HealthMaxAvgTick, cfg.HealthMaxPendingOps),
	}
	return New(append(base, opts...)...)
}
