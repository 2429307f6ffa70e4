package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsekit/pulsekit/pkg/client"
	"github.com/pulsekit/pulsekit/pkg/future"
	"github.com/pulsekit/pulsekit/pkg/logger"
)

// fakeTransport scripts transport outcomes and records every call.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []string
	handler func(method, path string, opts client.RequestOptions) (*client.Response, error)
}

func (f *fakeTransport) Do(_ context.Context, method, path string, opts client.RequestOptions) (*client.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, method+" "+path)
	h := f.handler
	f.mu.Unlock()

	if h != nil {
		return h(method, path, opts)
	}
	return &client.Response{StatusCode: 200, Body: []byte(`{}`)}, nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testLogger() *slog.Logger {
	return logger.New(logger.WithOutput(io.Discard))
}

func newTestClient(t *testing.T, transport client.Transport, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(transport, append([]client.Option{
		client.WithLogger(testLogger()),
		client.WithWaitPollInterval(100 * time.Microsecond),
	}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a transport", func(t *testing.T) {
		t.Parallel()

		_, err := client.New(nil)
		assert.ErrorIs(t, err, client.ErrNilTransport)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := client.NewHTTP("ftp://example.com")
		assert.ErrorIs(t, err, client.ErrValidation)
	})
}

func TestRequestAsync(t *testing.T) {
	t.Parallel()

	t.Run("settles with the transport response", func(t *testing.T) {
		t.Parallel()

		ft := &fakeTransport{
			handler: func(method, path string, _ client.RequestOptions) (*client.Response, error) {
				return &client.Response{StatusCode: 200, Body: []byte(`{"id":1}`)}, nil
			},
		}
		c := newTestClient(t, ft)

		fut := c.RequestAsync("get", "/v1/items", nil)
		assert.Equal(t, future.Pending, fut.Status(), "RequestAsync must return without blocking")
		assert.Zero(t, ft.callCount(), "transport runs inside a tick, not at schedule time")

		resp, err := client.Wait(c, fut, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, []string{"GET /v1/items"}, ft.callLog(), "method is normalized to upper case")
		assert.Zero(t, c.Pending())
	})

	t.Run("transport error passes through unmodified", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("connection refused")
		ft := &fakeTransport{
			handler: func(string, string, client.RequestOptions) (*client.Response, error) {
				return nil, wantErr
			},
		}
		c := newTestClient(t, ft)

		_, err := client.Wait(c, c.RequestAsync("GET", "/x", nil), time.Second)
		assert.Equal(t, wantErr, err)
	})

	t.Run("unsupported method fails at schedule time", func(t *testing.T) {
		t.Parallel()

		ft := &fakeTransport{}
		c := newTestClient(t, ft)

		fut := c.RequestAsync("PATCH", "/x", nil)
		require.Equal(t, future.Rejected, fut.Status())
		_, err := fut.Result()
		assert.ErrorIs(t, err, client.ErrValidation)
		assert.Zero(t, c.Pending(), "a rejected request must not be tracked")
		assert.Zero(t, ft.callCount())
	})
}

func TestBulkAsync(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{
		handler: func(_, path string, _ client.RequestOptions) (*client.Response, error) {
			if path == "/fail" {
				return nil, errors.New("upstream down")
			}
			return &client.Response{StatusCode: 200}, nil
		},
	}
	c := newTestClient(t, ft)

	fut := c.BulkAsync([]client.Request{
		{Method: "GET", Path: "/a"},
		{Method: "GET", Path: "/fail"},
		{Method: "DELETE", Path: "/b"},
	})

	outcomes, err := client.Wait(c, fut, time.Second)
	require.NoError(t, err, "bulk aggregation never fails as a whole")
	require.Len(t, outcomes, 3)

	assert.Equal(t, future.Fulfilled, outcomes[0].Status)
	assert.Equal(t, future.Rejected, outcomes[1].Status)
	assert.EqualError(t, outcomes[1].Err, "upstream down")
	assert.Equal(t, future.Fulfilled, outcomes[2].Status)
}

func TestBatchAsync(t *testing.T) {
	t.Parallel()

	t.Run("chunks run strictly sequentially", func(t *testing.T) {
		t.Parallel()

		ft := &fakeTransport{}
		c := newTestClient(t, ft)

		reqs := make([]client.Request, 5)
		for i := range reqs {
			reqs[i] = client.Request{Method: "GET", Path: "/item"}
		}

		fut := c.BatchAsync(reqs, 2)

		// chunk sizes 2,2,1, one chunk per tick
		c.Scheduler().Tick()
		assert.Equal(t, 2, ft.callCount())

		c.Scheduler().Tick()
		assert.Equal(t, 4, ft.callCount(), "chunk 2 must not start before chunk 1's aggregation resolves")

		c.Scheduler().Tick()
		assert.Equal(t, 5, ft.callCount())

		res, err := fut.Result()
		require.NoError(t, err)
		require.Equal(t, future.Fulfilled, fut.Status())
		assert.Equal(t, 5, res.Completed)
		assert.Equal(t, 5, res.Total)
		assert.Len(t, res.Results, 5)
		assert.Empty(t, res.Errors)
	})

	t.Run("accumulates successes and errors across chunks", func(t *testing.T) {
		t.Parallel()

		ft := &fakeTransport{
			handler: func(_, path string, _ client.RequestOptions) (*client.Response, error) {
				if path == "/bad" {
					return nil, errors.New("nope")
				}
				return &client.Response{StatusCode: 200}, nil
			},
		}
		c := newTestClient(t, ft)

		fut := c.BatchAsync([]client.Request{
			{Method: "GET", Path: "/ok"},
			{Method: "GET", Path: "/bad"},
			{Method: "GET", Path: "/ok"},
		}, 2)

		res, err := client.Wait(c, fut, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Completed)
		assert.Len(t, res.Results, 2)
		require.Len(t, res.Errors, 1)
		assert.EqualError(t, res.Errors[1], "nope")
	})

	t.Run("empty input resolves immediately", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})
		fut := c.BatchAsync(nil, 3)

		require.Equal(t, future.Fulfilled, fut.Status())
		res, err := fut.Result()
		require.NoError(t, err)
		assert.Zero(t, res.Total)
		assert.Zero(t, res.Completed)
	})

	t.Run("non-positive concurrency is a validation error", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})
		fut := c.BatchAsync([]client.Request{{Method: "GET", Path: "/x"}}, 0)

		_, err := fut.Result()
		assert.ErrorIs(t, err, client.ErrValidation)
	})
}

func TestCancelAllPending(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(t, ft)

	f1 := c.RequestAsync("GET", "/a", nil)
	f2 := c.RequestAsync("GET", "/b", nil)
	require.Equal(t, 2, c.Pending())

	cancelled := c.CancelAllPending()
	assert.Equal(t, 2, cancelled)
	assert.Zero(t, c.Pending())

	_, err := f1.Result()
	assert.True(t, client.IsCancelled(err))
	_, err = f2.Result()
	assert.ErrorIs(t, err, client.ErrCancelled)

	// the already-scheduled callbacks are no-ops now
	c.Scheduler().Tick()
	assert.Zero(t, ft.callCount(), "cancelled operations must not reach the transport")

	// cancelling an empty instance is harmless
	assert.Zero(t, c.CancelAllPending())
}

func TestCancelAllPending_InstanceScoped(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c1 := newTestClient(t, ft)
	c2 := newTestClient(t, ft)

	f1 := c1.RequestAsync("GET", "/a", nil)
	f2 := c2.RequestAsync("GET", "/b", nil)

	c1.CancelAllPending()

	require.Equal(t, future.Rejected, f1.Status())
	assert.Equal(t, future.Pending, f2.Status(), "cancellation must not leak across client instances")
	assert.Equal(t, 1, c2.Pending())

	resp, err := client.Wait(c2, f2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClientCache(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	rc := client.NewResponseCache(16, 0)
	c := newTestClient(t, ft, client.WithCache(rc))

	resp1, err := client.Wait(c, c.RequestAsync("GET", "/items", nil), time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, ft.callCount())

	resp2, err := client.Wait(c, c.RequestAsync("GET", "/items", nil), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, ft.callCount(), "second GET must be served from the cache")
	assert.Equal(t, resp1.StatusCode, resp2.StatusCode)

	// non-GET methods bypass the cache
	_, err = client.Wait(c, c.RequestAsync("POST", "/items", nil), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, ft.callCount())

	// invalidation forces the next GET back to the transport
	assert.True(t, rc.Invalidate("GET", "/items"))
	_, err = client.Wait(c, c.RequestAsync("GET", "/items", nil), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, ft.callCount())
}

func TestClientCircuitBreaker(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{
		handler: func(string, string, client.RequestOptions) (*client.Response, error) {
			return nil, errors.New("service down")
		},
	}
	breaker := client.NewCircuitBreaker(2, 1, time.Hour)
	c := newTestClient(t, ft, client.WithCircuitBreaker(breaker))

	for range 2 {
		_, err := client.Wait(c, c.RequestAsync("GET", "/x", nil), time.Second)
		require.EqualError(t, err, "service down")
	}
	require.Equal(t, client.CircuitOpen, breaker.State())

	_, err := client.Wait(c, c.RequestAsync("GET", "/x", nil), time.Second)
	assert.ErrorIs(t, err, client.ErrCircuitOpen)
	assert.Equal(t, 2, ft.callCount(), "an open circuit must fail fast without a transport call")
}
