package client_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsekit/pulsekit/pkg/client"
	"github.com/pulsekit/pulsekit/pkg/future"
)

func TestDelay(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeTransport{})

	start := time.Now()
	_, err := client.Wait(c, client.Delay(c, 20*time.Millisecond), time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("slow future loses the race", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		slow := client.Delay(c, 200*time.Millisecond)
		_, err := client.Wait(c, client.Timeout(c, slow, 20*time.Millisecond), time.Second)
		assert.True(t, client.IsTimeout(err))

		// the loser is not cancelled; it settles later and is discarded
		_, err = client.Wait(c, slow, time.Second)
		assert.NoError(t, err)
	})

	t.Run("fast future wins the race", func(t *testing.T) {
		t.Parallel()

		ft := &fakeTransport{}
		c := newTestClient(t, ft)

		fut := client.Timeout(c, c.RequestAsync("GET", "/fast", nil), time.Second)
		resp, err := client.Wait(c, fut, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("resolves after transient failures", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		calls := 0
		op := func() *future.Future[string] {
			calls++
			if calls < 3 {
				return future.NewRejected[string](errors.New("transient"))
			}
			return future.Resolved("finally")
		}

		v, err := client.Wait(c, client.Retry(c, op, 3, time.Millisecond), time.Second)
		require.NoError(t, err)
		assert.Equal(t, "finally", v)
		assert.Equal(t, 3, calls, "success on the third attempt must stop retrying")
	})

	t.Run("exhaustion rejects with the last error", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		calls := 0
		lastErr := errors.New("attempt 2 failed")
		op := func() *future.Future[string] {
			calls++
			if calls == 1 {
				return future.NewRejected[string](errors.New("attempt 1 failed"))
			}
			return future.NewRejected[string](lastErr)
		}

		_, err := client.Wait(c, client.Retry(c, op, 2, time.Millisecond), time.Second)
		assert.Equal(t, lastErr, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("first success returns immediately", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		calls := 0
		op := func() *future.Future[int] {
			calls++
			return future.Resolved(99)
		}

		v, err := client.Wait(c, client.Retry(c, op, 5, time.Millisecond), time.Second)
		require.NoError(t, err)
		assert.Equal(t, 99, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("invalid arguments reject", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		fut := client.Retry(c, func() *future.Future[int] { return future.Resolved(1) }, 0, time.Millisecond)
		_, err := fut.Result()
		assert.ErrorIs(t, err, client.ErrValidation)

		fut = client.Retry[int](c, nil, 3, time.Millisecond)
		_, err = fut.Result()
		assert.ErrorIs(t, err, client.ErrValidation)
	})
}

func TestRequestWithRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	ft := &fakeTransport{
		handler: func(string, string, client.RequestOptions) (*client.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("flaky upstream")
			}
			return &client.Response{StatusCode: 200}, nil
		},
	}
	c := newTestClient(t, ft)

	fut := c.RequestWithRetry("GET", "/flaky", nil, 3, time.Millisecond)
	resp, err := client.Wait(c, fut, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("returns the settled value", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		fut := future.New[int]()
		c.Scheduler().SetTimeout(func() { fut.Resolve(7) }, 10*time.Millisecond)

		v, err := client.Wait(c, fut, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("re-raises the rejection", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})
		wantErr := errors.New("settled badly")

		fut := future.New[int]()
		c.Scheduler().SetTimeout(func() { fut.Reject(wantErr) }, time.Millisecond)

		_, err := client.Wait(c, fut, time.Second)
		assert.Equal(t, wantErr, err)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		slow := client.Delay(c, 200*time.Millisecond)
		_, err := client.Wait(c, slow, 30*time.Millisecond)
		assert.ErrorIs(t, err, client.ErrTimeout)
	})

	t.Run("already settled future returns without pumping", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, &fakeTransport{})

		v, err := client.Wait(c, future.Resolved("done"), time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, "done", v)
	})
}
