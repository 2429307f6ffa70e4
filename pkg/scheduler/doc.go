// Package scheduler implements a cooperative, tick-driven work loop with
// three queues: an immediate queue, a timer table and a priority operation
// queue.
//
// The scheduler provides the illusion of overlapping operations through
// callback interleaving. Callbacks run to completion and yield only by
// registering continuations; there is no preemption. One bounded pass of
// currently-due work is a tick, and a tick processes work in a fixed order:
//
//  1. The immediate queue is snapshotted and cleared, then each entry runs.
//     Entries enqueued during the drain run on the next tick, never the
//     current one.
//  2. Timers are scanned once; every due timer fires. Repeating timers are
//     rescheduled to now+interval, one-shot timers are removed.
//  3. At most one entry is dequeued from the priority operation queue
//     (highest priority first, ties by insertion order) and run. One unit
//     per tick bounds tick latency regardless of backlog.
//
// A panic raised by any callback is recovered at the tick boundary and
// logged at debug level. One failing callback cannot corrupt the loop or
// block sibling callbacks. This also means code driving the raw scheduler
// APIs has no channel to surface failure; consumers that need failure
// signals should settle a Future they hold instead. That is the documented
// contract, not an omission.
//
// # Lifecycle
//
// A Scheduler moves Idle→Running via Run, Running→Stopping via Stop, and
// reaches the terminal Stopped state when Run drains and returns. Invalid
// transitions fail with ErrInvalidState.
//
// Run loops Tick with a small fixed inter-tick delay until Stop is called or
// the context is cancelled. Tick can also be driven manually, which is how
// the client package's blocking wait bridge works.
//
// # Monitoring
//
// Stats returns running totals (tick count, incremental average and maximum
// tick duration) and pending counts per queue. Healthy derives a boolean
// from configurable bounds, intended for external monitoring only; nothing
// is enforced internally.
package scheduler
