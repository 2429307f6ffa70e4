package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// State represents the lifecycle state of a Scheduler.
type State int

const (
	// StateIdle is the initial state before Run is called.
	StateIdle State = iota
	// StateRunning means the Run loop is ticking.
	StateRunning
	// StateStopping means Stop was requested and the loop is winding down.
	StateStopping
	// StateStopped is the terminal state.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TimerID is an opaque handle to a scheduled timer.
type TimerID uint64

// timerEntry tracks one pending timer. interval == 0 marks a one-shot timer.
type timerEntry struct {
	id        TimerID
	callback  func()
	dueAt     time.Time
	interval  time.Duration
	createdAt time.Time
}

// tickEntry is one immediate-queue callback.
type tickEntry struct {
	callback  func()
	createdAt time.Time
}

// operationEntry is one priority-queue callback. seq provides the stable
// tie-break for equal priorities.
type operationEntry struct {
	callback func()
	priority int
	seq      uint64
}

// Scheduler is a cooperative, tick-driven work loop. Zero value is not
// usable; use New to create instances.
//
// Producers (NextTick, SetTimeout, AddOperation, ...) are safe to call from
// any goroutine. Tick and Run are single-consumer: only one of them may
// drive the loop at a time.
type Scheduler struct {
	mu          sync.Mutex
	state       State
	immediate   []tickEntry
	timers      map[TimerID]*timerEntry
	ops         []operationEntry
	nextTimerID TimerID
	nextSeq     uint64
	stop        chan struct{}

	tickInterval time.Duration
	logger       *slog.Logger

	// health bounds, monitoring only
	maxAvgTick    time.Duration
	maxPendingOps int

	// running totals
	tickCount uint64
	avgTick   time.Duration
	maxTick   time.Duration
}

// New creates a scheduler with the given options applied over defaults.
func New(opts ...Option) *Scheduler {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		timers:        make(map[TimerID]*timerEntry),
		stop:          make(chan struct{}),
		tickInterval:  options.tickInterval,
		logger:        options.logger,
		maxAvgTick:    options.maxAvgTick,
		maxPendingOps: options.maxPendingOps,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextTick enqueues cb on the immediate queue. Every entry enqueued before a
// tick begins runs within that tick, in FIFO order.
func (s *Scheduler) NextTick(cb func()) error {
	if cb == nil {
		return ErrNilCallback
	}

	s.mu.Lock()
	s.immediate = append(s.immediate, tickEntry{callback: cb, createdAt: time.Now()})
	s.mu.Unlock()
	return nil
}

// AddOperation enqueues cb on the priority operation queue. Higher priority
// runs sooner; equal priorities preserve insertion order. The queue yields
// at most one entry per tick.
func (s *Scheduler) AddOperation(cb func(), priority int) error {
	if cb == nil {
		return ErrNilCallback
	}

	s.mu.Lock()
	s.nextSeq++
	s.ops = append(s.ops, operationEntry{callback: cb, priority: priority, seq: s.nextSeq})
	sort.Slice(s.ops, func(i, j int) bool {
		if s.ops[i].priority != s.ops[j].priority {
			return s.ops[i].priority > s.ops[j].priority
		}
		return s.ops[i].seq < s.ops[j].seq
	})
	s.mu.Unlock()
	return nil
}

// SetTimeout schedules cb to run once after delay. The returned handle can
// cancel the timer via ClearTimeout before it fires.
func (s *Scheduler) SetTimeout(cb func(), delay time.Duration) TimerID {
	return s.addTimer(cb, delay, 0)
}

// SetInterval schedules cb to run every interval until cancelled via
// ClearInterval. The first run is due one interval from now.
func (s *Scheduler) SetInterval(cb func(), interval time.Duration) TimerID {
	return s.addTimer(cb, interval, interval)
}

func (s *Scheduler) addTimer(cb func(), delay, interval time.Duration) TimerID {
	if cb == nil {
		return 0
	}

	now := time.Now()

	s.mu.Lock()
	s.nextTimerID++
	id := s.nextTimerID
	s.timers[id] = &timerEntry{
		id:        id,
		callback:  cb,
		dueAt:     now.Add(delay),
		interval:  interval,
		createdAt: now,
	}
	s.mu.Unlock()
	return id
}

// ClearTimeout cancels a pending timer by handle. Unknown or already-fired
// handles are a no-op.
func (s *Scheduler) ClearTimeout(id TimerID) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()
}

// ClearInterval cancels a repeating timer by handle. Unknown handles are a
// no-op.
func (s *Scheduler) ClearInterval(id TimerID) {
	s.ClearTimeout(id)
}

// Tick runs one bounded pass: drain the immediate queue snapshot, fire due
// timers, then run at most one priority operation. Callback panics are
// recovered and logged; they never escape the tick.
func (s *Scheduler) Tick() {
	start := time.Now()

	// Phase 1: immediates. Snapshot-and-clear isolates entries added during
	// the drain; they run on the next tick.
	s.mu.Lock()
	entries := s.immediate
	s.immediate = nil
	s.mu.Unlock()

	for _, e := range entries {
		s.invoke("immediate", e.callback)
	}

	// Phase 2: timers. Due timers fire in due-time order (handle order for
	// equal due times) so firing is deterministic.
	now := time.Now()

	s.mu.Lock()
	var due []*timerEntry
	for _, t := range s.timers {
		if !t.dueAt.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].dueAt.Equal(due[j].dueAt) {
			return due[i].dueAt.Before(due[j].dueAt)
		}
		return due[i].id < due[j].id
	})
	for _, t := range due {
		if t.interval > 0 {
			t.dueAt = now.Add(t.interval)
		} else {
			delete(s.timers, t.id)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		s.invoke("timer", t.callback)
	}

	// Phase 3: at most one operation, regardless of backlog.
	s.mu.Lock()
	var op func()
	if len(s.ops) > 0 {
		op = s.ops[0].callback
		s.ops = s.ops[1:]
	}
	s.mu.Unlock()

	if op != nil {
		s.invoke("operation", op)
	}

	s.recordTick(time.Since(start))
}

// invoke runs cb with panic isolation at the tick boundary. phase classifies
// which queue the callback came from, for log correlation.
func (s *Scheduler) invoke(phase string, cb func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("scheduler callback panicked",
				slog.String("phase", phase),
				slog.Any("panic", r))
		}
	}()
	cb()
}

// Run transitions Idle→Running and loops Tick with the configured inter-tick
// delay until all three queues drain, Stop is called, or ctx is cancelled.
// It returns ErrInvalidState when the scheduler is not startable, and
// ctx.Err() when the context ended the loop. The scheduler ends up Stopped
// in every case.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot run from state %q", ErrInvalidState, state)
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Debug("scheduler started", slog.Duration("tick_interval", s.tickInterval))

	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()
		s.logger.Debug("scheduler stopped")
	}()

	for {
		s.Tick()

		s.mu.Lock()
		stopping := s.state == StateStopping
		drained := len(s.immediate) == 0 && len(s.timers) == 0 && len(s.ops) == 0
		s.mu.Unlock()

		if stopping || drained {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			// Stop flagged between the state check and here; one more loop
			// iteration is not needed.
			return nil
		case <-time.After(s.tickInterval):
		}
	}
}

// Stop requests a Running scheduler to wind down. The Run loop observes the
// transition and returns after its current tick.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot stop from state %q", ErrInvalidState, state)
	}
	s.state = StateStopping
	s.mu.Unlock()

	close(s.stop)
	return nil
}

func (s *Scheduler) recordTick(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickCount++
	// incremental mean avoids keeping per-tick samples
	s.avgTick += (d - s.avgTick) / time.Duration(s.tickCount)
	if d > s.maxTick {
		s.maxTick = d
	}
}
