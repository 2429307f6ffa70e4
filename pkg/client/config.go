package client

import (
	"time"

	"github.com/pulsekit/pulsekit/pkg/config"
	"github.com/pulsekit/pulsekit/pkg/scheduler"
)

// Config holds environment-driven client settings.
type Config struct {
	BaseURL          string        `env:"PULSE_BASE_URL,required,notEmpty"`
	RequestTimeout   time.Duration `env:"PULSE_REQUEST_TIMEOUT" envDefault:"10s"`
	WaitPollInterval time.Duration `env:"PULSE_WAIT_POLL_INTERVAL" envDefault:"500us"`
}

// NewFromEnv builds a client from environment configuration: base URL and
// request timeout for the HTTP transport, wait poll interval for the
// synchronous bridge, and the scheduler's own Config for its tick loop.
// Explicit options take precedence.
func NewFromEnv(opts ...Option) (*Client, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	var schedCfg scheduler.Config
	if err := config.Load(&schedCfg); err != nil {
		return nil, err
	}

	transport, err := NewHTTPTransport(cfg.BaseURL, WithRequestTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithScheduler(scheduler.NewFromConfig(schedCfg)),
		WithWaitPollInterval(cfg.WaitPollInterval),
	}
	return New(transport, append(base, opts...)...)
}
