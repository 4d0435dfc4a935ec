package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestClient(t *testing.T, opts Options) (*Client[int], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[int](opts)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func testOptions() Options {
	return Options{StaleTime: 5 * time.Minute, Retry: 1, RetryDelay: time.Millisecond}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestFetchUnknownKey(t *testing.T) {
	c, _ := newTestClient(t, testOptions())

	_, err := c.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownQuery)

	_, _, err = c.Peek("missing")
	assert.ErrorIs(t, err, ErrUnknownQuery)
	assert.ErrorIs(t, c.Prefetch("missing"), ErrUnknownQuery)
}

func TestFetchCachesWithinStaleTime(t *testing.T) {
	c, clock := newTestClient(t, testOptions())
	var calls int32
	c.Register("k", func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	v, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(4 * time.Minute)
	v, err = c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	st := c.State("k")
	assert.Equal(t, StatusSuccess, st.Status)
	assert.True(t, st.HasData)
	assert.Equal(t, 1, st.FetchCount)
}

func TestFetchServesStaleAndRefetches(t *testing.T) {
	c, clock := newTestClient(t, testOptions())
	var calls int32
	c.Register("k", func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	_, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	v, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v, "stale value should be returned immediately")

	waitFor(t, func() bool { return c.State("k").FetchCount == 2 })
	v, err = c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFetchDeduplicatesConcurrentCallers(t *testing.T) {
	c, _ := newTestClient(t, testOptions())
	var calls int32
	release := make(chan struct{})
	c.Register("k", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), "k")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestFetchRetriesOnce(t *testing.T) {
	c, _ := newTestClient(t, testOptions())
	var calls int32
	c.Register("k", func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return 0, errors.New("transient")
		}
		return 7, nil
	})

	v, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchErrorIsCachedUntilStale(t *testing.T) {
	c, clock := newTestClient(t, testOptions())
	var calls int32
	boom := errors.New("boom")
	c.Register("k", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, boom
	})

	_, err := c.Fetch(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "one retry expected")

	_, err = c.Fetch(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	st := c.State("k")
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "boom", st.Error)
	assert.False(t, st.HasData)

	clock.Advance(6 * time.Minute)
	_, err = c.Fetch(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestFailedRefetchKeepsData(t *testing.T) {
	c, clock := newTestClient(t, Options{StaleTime: time.Minute})
	var fail atomic.Bool
	c.Register("k", func(ctx context.Context) (int, error) {
		if fail.Load() {
			return 0, errors.New("down")
		}
		return 5, nil
	})

	_, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)

	fail.Store(true)
	clock.Advance(2 * time.Minute)
	v, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	waitFor(t, func() bool { return c.State("k").FetchCount == 2 })
	st := c.State("k")
	assert.Equal(t, StatusError, st.Status)
	assert.True(t, st.HasData)

	v, st, err = c.Peek("k")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, st.HasData)
}

func TestPeekStartsBackgroundFetch(t *testing.T) {
	c, _ := newTestClient(t, testOptions())
	c.Register("k", func(ctx context.Context) (int, error) { return 9, nil })

	_, st, err := c.Peek("k")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st.Status)
	assert.True(t, st.Fetching)

	waitFor(t, func() bool { return c.State("k").Status == StatusSuccess })
	v, st, err := c.Peek("k")
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.False(t, st.Fetching)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c, _ := newTestClient(t, testOptions())
	var calls int32
	c.Register("k", func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	_, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)

	c.Invalidate("k")
	v, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	waitFor(t, func() bool { return c.State("k").FetchCount == 2 })
}

func TestFetchHonoursCallerContext(t *testing.T) {
	c, _ := newTestClient(t, testOptions())
	release := make(chan struct{})
	c.Register("k", func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCleanupEvictsIdleEntries(t *testing.T) {
	c, clock := newTestClient(t, Options{StaleTime: time.Minute, GCTime: time.Hour})
	c.Register("k", func(ctx context.Context) (int, error) { return 1, nil })

	_, err := c.Fetch(context.Background(), "k")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	c.cleanup()

	st := c.State("k")
	assert.Equal(t, StatusPending, st.Status)
	assert.Equal(t, 0, st.FetchCount)
}

func TestCloseStopsBackgroundFetches(t *testing.T) {
	c := New[int](testOptions())
	var calls int32
	c.Register("k", func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})
	c.Close()
	c.Close()

	_, st, err := c.Peek("k")
	require.NoError(t, err)
	assert.False(t, st.Fetching)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCloseRacesWithPeek(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := New[int](testOptions())
		c.Register("k", func(ctx context.Context) (int, error) { return 1, nil })

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := 0; n < 20; n++ {
					c.Invalidate("k")
					_, _, _ = c.Peek("k")
				}
			}()
		}
		c.Close()
		wg.Wait()
		c.Close()
	}
}
