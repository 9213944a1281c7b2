package scopebridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestThrottler_Do(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	th := NewThrottler()
	th.now = clock.Now

	calls := 0
	dispatch := func() (*Result, error) {
		calls++
		return &Result{Payload: []byte(`1`)}, nil
	}

	res, shared, err := th.Do("GET /api/x", time.Second, dispatch)
	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, 1, calls)

	clock.Advance(500 * time.Millisecond)
	again, shared, err := th.Do("GET /api/x", time.Second, dispatch)
	require.NoError(t, err)
	require.True(t, shared)
	require.Same(t, res, again)
	require.Equal(t, 1, calls)

	clock.Advance(500 * time.Millisecond)
	_, shared, err = th.Do("GET /api/x", time.Second, dispatch)
	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, 2, calls)
}

func TestThrottler_SharesFailure(t *testing.T) {
	th := NewThrottler()
	boom := errors.New("boom")

	_, _, err := th.Do("k", time.Minute, func() (*Result, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, shared, err := th.Do("k", time.Minute, func() (*Result, error) {
		t.Fatal("second dispatch inside the window")
		return nil, nil
	})
	require.True(t, shared)
	require.ErrorIs(t, err, boom)
}

func TestThrottler_EvictsStaleEntries(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	th := NewThrottler()
	th.now = clock.Now

	ok := func() (*Result, error) { return &Result{}, nil }
	for _, key := range []string{"a", "b", "c"} {
		_, _, err := th.Do(key, time.Second, ok)
		require.NoError(t, err)
	}

	require.Equal(t, 3, th.Len())

	clock.Advance(2 * time.Second)
	_, _, err := th.Do("d", time.Minute, ok)
	require.NoError(t, err)
	require.Equal(t, 1, th.Len())

	clock.Advance(2 * time.Minute)
	th.Evict()
	require.Zero(t, th.Len())
}

func TestThrottler_ConcurrentLeader(t *testing.T) {
	th := NewThrottler()

	var mu sync.Mutex
	calls := 0
	gate := make(chan struct{})

	var wg sync.WaitGroup
	sharedCount := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, shared, err := th.Do("k", time.Minute, func() (*Result, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				<-gate
				return &Result{}, nil
			})
			require.NoError(t, err)

			if shared {
				mu.Lock()
				sharedCount++
				mu.Unlock()
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.Equal(t, 1, calls)
	require.Equal(t, 9, sharedCount)
}

func TestThrottler_ForgetsTimeouts(t *testing.T) {
	th := NewThrottler()
	timeout := &ClassifiedError{Kind: KindTimeout, Code: CodeTimeout, Message: "request timed out"}

	_, _, err := th.Do("k", time.Minute, func() (*Result, error) { return nil, timeout })
	require.True(t, IsKind(err, KindTimeout))
	require.Zero(t, th.Len())

	calls := 0
	_, shared, err := th.Do("k", time.Minute, func() (*Result, error) {
		calls++
		return &Result{}, nil
	})
	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, 1, calls)
}
