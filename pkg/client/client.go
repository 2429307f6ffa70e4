package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/pulsekit/pkg/future"
	"github.com/pulsekit/pulsekit/pkg/scheduler"
)

// TrackedOperation is the bookkeeping record for one in-flight request.
// It is created when the request is enqueued and its outcome fields are
// written exactly once when the request settles; read-only thereafter.
type TrackedOperation struct {
	ID         uuid.UUID
	Method     string
	Path       string
	Options    RequestOptions
	Result     *Response
	Err        error
	Retries    int
	EnqueuedAt time.Time
	SettledAt  time.Time
	Cached     bool
}

// trackedFuture pairs a bookkeeping record with the Future it settles.
type trackedFuture struct {
	op  *TrackedOperation
	fut *future.Future[*Response]
}

// Cache is the narrow interface of an optional response cache collaborator.
// Its internals (driver, eviction, TTL) live outside the async core.
type Cache interface {
	Get(method, path string) (*Response, bool)
	Set(method, path string, resp *Response)
}

// Client is the asynchronous facade over a synchronous Transport. Zero value
// is not usable; use New or NewHTTP.
//
// The pending-operation map is instance-scoped: two Clients never share
// tracking state, and CancelAllPending clears only its own instance.
type Client struct {
	transport Transport
	sched     *scheduler.Scheduler
	logger    *slog.Logger
	breaker   *CircuitBreaker
	cache     Cache
	waitPoll  time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]trackedFuture
}

// New creates a facade over the given transport.
func New(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Client{
		transport: transport,
		sched:     options.sched,
		logger:    options.logger,
		breaker:   options.breaker,
		cache:     options.cache,
		waitPoll:  options.waitPoll,
		pending:   make(map[uuid.UUID]trackedFuture),
	}, nil
}

// NewHTTP creates a facade over a pooled HTTP transport rooted at baseURL.
func NewHTTP(baseURL string, opts ...Option) (*Client, error) {
	transport, err := NewHTTPTransport(baseURL)
	if err != nil {
		return nil, err
	}
	return New(transport, opts...)
}

// Scheduler returns the tick loop driving this client, for running it in the
// background or polling its stats.
func (c *Client) Scheduler() *scheduler.Scheduler {
	return c.sched
}

// Pending returns the number of tracked in-flight operations.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// supportedMethods covers the operations of the remote data service.
var supportedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
}

// RequestAsync allocates a Future, schedules an immediate callback that
// invokes the transport, and returns without blocking. An unsupported method
// fails at schedule time with ErrValidation. The returned Future settles
// with the transport's response or its unmodified error.
func (c *Client) RequestAsync(method, path string, opts *RequestOptions) *future.Future[*Response] {
	return c.requestAttempt(method, path, opts, 0)
}

// requestAttempt is RequestAsync with the retry counter of the originating
// attempt recorded on the tracking record.
func (c *Client) requestAttempt(method, path string, opts *RequestOptions, retries int) *future.Future[*Response] {
	fut := future.New[*Response]()

	method = strings.ToUpper(method)
	if _, ok := supportedMethods[method]; !ok {
		fut.Reject(fmt.Errorf("%w: unsupported method %q", ErrValidation, method))
		return fut
	}

	var ro RequestOptions
	if opts != nil {
		ro = *opts
	}

	op := &TrackedOperation{
		ID:         uuid.New(),
		Method:     method,
		Path:       path,
		Options:    ro,
		Retries:    retries,
		EnqueuedAt: time.Now(),
	}

	c.mu.Lock()
	c.pending[op.ID] = trackedFuture{op: op, fut: fut}
	c.mu.Unlock()

	if err := c.sched.NextTick(func() { c.execute(op, fut) }); err != nil {
		c.mu.Lock()
		delete(c.pending, op.ID)
		c.mu.Unlock()
		fut.Reject(err)
	}

	return fut
}

// execute runs one transport call from within a scheduler tick and settles
// the Future with its outcome.
func (c *Client) execute(op *TrackedOperation, fut *future.Future[*Response]) {
	// CancelAllPending may have settled the Future before this tick ran.
	if fut.Settled() {
		return
	}

	if c.breaker != nil && !c.breaker.Allow() {
		c.settle(op, fut, nil, fmt.Errorf("%w: %s %s", ErrCircuitOpen, op.Method, op.Path))
		return
	}

	if c.cache != nil && op.Method == http.MethodGet {
		if resp, ok := c.cache.Get(op.Method, op.Path); ok {
			c.mu.Lock()
			op.Cached = true
			c.mu.Unlock()
			c.settle(op, fut, resp, nil)
			return
		}
	}

	resp, err := c.transport.Do(context.Background(), op.Method, op.Path, op.Options)

	if c.breaker != nil {
		if err != nil {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}

	if err == nil && c.cache != nil && op.Method == http.MethodGet && resp.OK() {
		c.cache.Set(op.Method, op.Path, resp)
	}

	c.settle(op, fut, resp, err)
}

// settle records the write-once outcome, removes the operation from
// tracking, and settles the Future.
func (c *Client) settle(op *TrackedOperation, fut *future.Future[*Response], resp *Response, err error) {
	c.mu.Lock()
	if op.SettledAt.IsZero() {
		op.Result = resp
		op.Err = err
		op.SettledAt = time.Now()
	}
	delete(c.pending, op.ID)
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("request failed",
			slog.String("operation_id", op.ID.String()),
			slog.String("method", op.Method),
			slog.String("path", op.Path),
			slog.String("error", err.Error()))
		fut.Reject(err)
		return
	}

	c.logger.Debug("request settled",
		slog.String("operation_id", op.ID.String()),
		slog.String("method", op.Method),
		slog.String("path", op.Path),
		slog.Int("status", resp.StatusCode))
	fut.Resolve(resp)
}

// BulkAsync fans out every request through RequestAsync and aggregates with
// AllSettled: the returned Future fulfills with one outcome per request, in
// input order, and never fails as a whole.
func (c *Client) BulkAsync(reqs []Request) *future.Future[[]future.Outcome[*Response]] {
	futs := make([]*future.Future[*Response], len(reqs))
	for i, r := range reqs {
		futs[i] = c.RequestAsync(r.Method, r.Path, &r.Options)
	}
	return future.AllSettled(futs)
}

// BatchResult is the aggregate outcome of BatchAsync, keyed by request index.
type BatchResult struct {
	Results   map[int]*Response
	Errors    map[int]error
	Completed int
	Total     int
}

// BatchAsync partitions reqs into fixed-size chunks of concurrency. Chunks
// run strictly sequentially: chunk N+1 is not scheduled until chunk N's
// aggregation resolves. Within a chunk all requests run concurrently.
// The Future fulfills once every chunk completes; an empty input resolves
// immediately with an empty result.
func (c *Client) BatchAsync(reqs []Request, concurrency int) *future.Future[*BatchResult] {
	out := future.New[*BatchResult]()

	if concurrency <= 0 {
		out.Reject(fmt.Errorf("%w: concurrency must be positive, got %d", ErrValidation, concurrency))
		return out
	}

	acc := &BatchResult{
		Results: make(map[int]*Response),
		Errors:  make(map[int]error),
		Total:   len(reqs),
	}
	if len(reqs) == 0 {
		out.Resolve(acc)
		return out
	}

	c.runChunk(reqs, 0, concurrency, acc, out)
	return out
}

// runChunk fans out one chunk and advances to the next once its aggregation
// settles. The accumulator is threaded explicitly through each advance so
// batch state never hides in closure captures.
func (c *Client) runChunk(reqs []Request, offset, concurrency int, acc *BatchResult, out *future.Future[*BatchResult]) {
	end := min(offset+concurrency, len(reqs))

	settled := c.BulkAsync(reqs[offset:end])
	settled.OnSettled(func(outcomes []future.Outcome[*Response], _ error) {
		for j, o := range outcomes {
			idx := offset + j
			if o.Status == future.Fulfilled {
				acc.Results[idx] = o.Value
			} else {
				acc.Errors[idx] = o.Err
			}
			acc.Completed++
		}

		if end >= len(reqs) {
			out.Resolve(acc)
			return
		}
		c.runChunk(reqs, end, concurrency, acc, out)
	})
}

// CancelAllPending rejects every tracked in-flight Future with ErrCancelled
// and clears tracking. Callbacks already scheduled for those operations
// become no-ops through the Future's settle-once guard. Returns the number
// of cancelled operations.
func (c *Client) CancelAllPending() int {
	now := time.Now()

	c.mu.Lock()
	cancelled := make([]trackedFuture, 0, len(c.pending))
	for _, tf := range c.pending {
		if tf.op.SettledAt.IsZero() {
			tf.op.Err = fmt.Errorf("%w: %s %s", ErrCancelled, tf.op.Method, tf.op.Path)
			tf.op.SettledAt = now
		}
		cancelled = append(cancelled, tf)
	}
	c.pending = make(map[uuid.UUID]trackedFuture)
	c.mu.Unlock()

	for _, tf := range cancelled {
		tf.fut.Reject(tf.op.Err)
	}

	if len(cancelled) > 0 {
		c.logger.Info("cancelled pending operations", slog.Int("count", len(cancelled)))
	}
	return len(cancelled)
}
