// Package client exposes an asynchronous facade over a synchronous HTTP
// transport, composed from the future and scheduler packages.
//
// A Client turns blocking transport calls into Futures: RequestAsync
// allocates a Future, schedules an immediate callback that invokes the
// transport, and returns without blocking. On top of that single primitive
// the facade builds fan-out (BulkAsync), concurrency-limited batching
// (BatchAsync), timeout racing (Timeout), retry with backoff (Retry,
// RetryWithBackoff), plain delays (Delay) and a synchronous bridge (Wait)
// that pumps the scheduler until a Future settles.
//
// Concurrency here means cooperative interleaving of run-to-completion
// callbacks across scheduler ticks, not parallel execution. The transport is
// called synchronously from within a tick, so overlap of operations is
// illusory unless the transport itself is non-blocking. The only real
// blocking point is Wait, which occupies the caller while repeatedly driving
// Tick.
//
// # Usage
//
//	c, err := client.NewHTTP("https://api.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fut := c.RequestAsync(http.MethodGet, "/v1/items", nil)
//	resp, err := client.Wait(c, fut, 5*time.Second)
//
// # Cancellation
//
// Cancellation is expressed only as "reject instead of resolve".
// CancelAllPending rejects every tracked in-flight Future with ErrCancelled;
// already-scheduled callbacks for those Futures become no-ops through the
// Future's settle-once guard. There is no preemptive interruption: the loser
// of a Timeout race and the target of a timed-out Wait keep executing to
// completion and their results are discarded.
//
// # Error Handling
//
// Transport errors pass through to Futures unmodified. The facade adds
// ErrValidation (unsupported method, malformed call), ErrTimeout (Timeout
// and Wait deadlines), ErrCancelled (CancelAllPending) and ErrCircuitOpen
// (circuit breaker fast-fail), all usable with errors.Is.
package client
