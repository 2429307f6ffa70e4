package client

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before a retry attempt.
// Implementations should be safe for concurrent use.
type BackoffStrategy interface {
	// NextInterval returns the delay after the given failed attempt.
	// Attempt starts at 1 for the first failure.
	NextInterval(attempt int) time.Duration
}

// LinearBackoff grows the delay linearly with the attempt number. This is
// the facade's default retry behavior.
// Formula: min(Interval * attempt, MaxInterval)
type LinearBackoff struct {
	Interval    time.Duration
	MaxInterval time.Duration
}

func (l LinearBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := l.Interval
	if interval == 0 {
		interval = time.Second
	}

	max := l.MaxInterval
	if max == 0 {
		max = 30 * time.Second
	}

	delay := interval * time.Duration(attempt)
	if delay > max {
		delay = max
	}
	return delay
}

// ExponentialBackoff doubles (by default) the delay per attempt, with
// optional jitter to spread retry storms across clients.
// Formula: min(InitialInterval * (Multiplier ^ (attempt-1)) * (1 ± JitterFactor), MaxInterval)
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = time.Second
	}

	max := e.MaxInterval
	if max == 0 {
		max = 30 * time.Second
	}

	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))

	if e.JitterFactor > 0 {
		randomJitter := (rand.Float64()*2 - 1) * e.JitterFactor
		interval = interval * (1 + randomJitter)
	}

	if interval > float64(max) {
		interval = float64(max)
	}
	return time.Duration(interval)
}

// FixedBackoff waits the same interval between every attempt.
type FixedBackoff struct {
	Interval time.Duration
}

func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}
