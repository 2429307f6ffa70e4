package scheduler

import "time"

// Stats is a point-in-time snapshot of scheduler health counters. It is
// pollable at any time and never persisted.
type Stats struct {
	State             State
	TickCount         uint64
	AvgTickDuration   time.Duration
	MaxTickDuration   time.Duration
	PendingImmediate  int
	PendingTimers     int
	PendingOperations int
}

// Stats returns the current counters and pending queue sizes.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		State:             s.state,
		TickCount:         s.tickCount,
		AvgTickDuration:   s.avgTick,
		MaxTickDuration:   s.maxTick,
		PendingImmediate:  len(s.immediate),
		PendingTimers:     len(s.timers),
		PendingOperations: len(s.ops),
	}
}

// Healthy reports whether the scheduler looks responsive: average tick time
// within bounds, operation backlog within bounds, and state Running or
// Stopped. The predicate is for external monitoring only; nothing is
// enforced internally.
func (s *Scheduler) Healthy() bool {
	stats := s.Stats()

	if stats.State != StateRunning && stats.State != StateStopped {
		return false
	}
	if stats.AvgTickDuration > s.maxAvgTick {
		return false
	}
	return stats.PendingOperations <= s.maxPendingOps
}
