package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"co2-chart/internal/logger"
)

// ErrUnknownQuery is returned for a key with no registered fetch function.
var ErrUnknownQuery = errors.New("invalid fetch function for key")

// Func fetches the value for one key.
type Func[T any] func(ctx context.Context) (T, error)

// Options configures freshness and retry behaviour.
type Options struct {
	StaleTime  time.Duration // how long a settled result is served without refetching
	Retry      int           // extra attempts after the first failure
	RetryDelay time.Duration // first retry delay, doubled per attempt
	GCTime     time.Duration // idle entries older than this are evicted; 0 disables
}

// DefaultOptions mirrors the dashboard's query defaults: five minutes fresh, one retry.
func DefaultOptions() Options {
	return Options{
		StaleTime:  5 * time.Minute,
		Retry:      1,
		RetryDelay: time.Second,
		GCTime:     30 * time.Minute,
	}
}

const maxRetryDelay = 30 * time.Second

type Status string

const (
	StatusPending Status = "pending"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// State is a snapshot of one key.
type State struct {
	Key        string    `json:"key"`
	Status     Status    `json:"status"`
	Fetching   bool      `json:"fetching"`
	HasData    bool      `json:"has_data"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
	FetchCount int       `json:"fetch_count"`
}

type entry[T any] struct {
	data       T
	hasData    bool
	err        error
	settledAt  time.Time
	updatedAt  time.Time
	lastUsed   time.Time
	fetching   bool
	invalid    bool
	fetchCount int
}

// Client caches keyed query results. It is safe for concurrent use.
type Client[T any] struct {
	opts     Options
	mu       sync.Mutex
	registry map[string]Func[T]
	entries  map[string]*entry[T]
	flights  singleflight.Group
	now      func() time.Time

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a client and starts its cleanup loop when GCTime > 0.
func New[T any](opts Options) *Client[T] {
	c := &Client[T]{
		opts:     opts,
		registry: make(map[string]Func[T]),
		entries:  make(map[string]*entry[T]),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if opts.GCTime > 0 {
		c.wg.Add(1)
		go c.cleanupLoop()
	}
	return c
}

// Register binds key to fn, replacing any previous binding.
func (c *Client[T]) Register(key string, fn Func[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry[key] = fn
}

// Fetch returns data for key. Fresh results come straight from the cache;
// stale data is returned at once while a background refetch runs; with no
// data the caller waits for the (shared) fetch.
func (c *Client[T]) Fetch(ctx context.Context, key string) (T, error) {
	var zero T

	c.mu.Lock()
	if _, ok := c.registry[key]; !ok {
		c.mu.Unlock()
		return zero, fmt.Errorf("%w: %s", ErrUnknownQuery, key)
	}
	e := c.entry(key)
	e.lastUsed = c.now()

	if c.fresh(e) {
		data, hasData, err := e.data, e.hasData, e.err
		c.mu.Unlock()
		if hasData {
			logger.Query(ctx, key, "hit")
			return data, nil
		}
		return zero, err
	}
	if e.hasData {
		data := e.data
		c.refetchLocked(key, e)
		c.mu.Unlock()
		logger.Query(ctx, key, "stale")
		return data, nil
	}
	c.mu.Unlock()

	logger.Query(ctx, key, "miss")
	return c.do(ctx, key)
}

// Peek never blocks: it returns whatever is cached and the key's state,
// starting a background fetch when the cached result is missing or stale.
func (c *Client[T]) Peek(key string) (T, State, error) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registry[key]; !ok {
		return zero, State{Key: key}, fmt.Errorf("%w: %s", ErrUnknownQuery, key)
	}
	e := c.entry(key)
	e.lastUsed = c.now()
	if !c.fresh(e) {
		c.refetchLocked(key, e)
	}
	return e.data, c.stateLocked(key, e), nil
}

// Prefetch starts fetching key in the background if it is not fresh.
func (c *Client[T]) Prefetch(key string) error {
	_, _, err := c.Peek(key)
	return err
}

// State reports the key's current state without triggering a fetch.
func (c *Client[T]) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{Key: key, Status: StatusPending}
	}
	return c.stateLocked(key, e)
}

// Invalidate marks the key stale; the next read refetches.
func (c *Client[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.invalid = true
	}
}

// Close stops the cleanup loop and waits for background fetches. Reads
// after Close still work but no longer start background fetches.
func (c *Client[T]) Close() {
	c.mu.Lock()
	c.stopOnce.Do(func() { close(c.stop) })
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Client[T]) entry(key string) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	return e
}

func (c *Client[T]) fresh(e *entry[T]) bool {
	if e.settledAt.IsZero() || e.invalid {
		return false
	}
	return c.now().Sub(e.settledAt) <= c.opts.StaleTime
}

func (c *Client[T]) stateLocked(key string, e *entry[T]) State {
	st := State{
		Key:        key,
		Fetching:   e.fetching,
		HasData:    e.hasData,
		UpdatedAt:  e.updatedAt,
		FetchCount: e.fetchCount,
	}
	switch {
	case e.err != nil:
		st.Status = StatusError
		st.Error = e.err.Error()
	case e.hasData:
		st.Status = StatusSuccess
	default:
		st.Status = StatusPending
	}
	return st
}

// refetchLocked launches a background fetch unless one is already running.
// c.mu must be held: Close closes stop under the same lock, so no wg.Add can
// race with its wg.Wait.
func (c *Client[T]) refetchLocked(key string, e *entry[T]) {
	if e.fetching {
		return
	}
	select {
	case <-c.stop:
		return
	default:
	}
	e.fetching = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, _ = c.do(context.Background(), key)
	}()
}

// do joins or starts the single in-flight fetch for key. The fetch itself is
// detached from ctx so one impatient caller cannot fail it for the others.
func (c *Client[T]) do(ctx context.Context, key string) (T, error) {
	var zero T
	ch := c.flights.DoChan(key, func() (interface{}, error) {
		return c.run(context.WithoutCancel(ctx), key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Client[T]) run(ctx context.Context, key string) (T, error) {
	var zero T

	c.mu.Lock()
	fn := c.registry[key]
	e := c.entry(key)
	e.fetching = true
	c.mu.Unlock()

	timer := logger.StartOperation(ctx, "query.Fetch", "key", key)
	ctx = timer.GetContext()

	attempts := c.opts.Retry + 1
	delay := c.opts.RetryDelay
	var (
		data T
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err = fn(ctx)
		if err == nil {
			break
		}
		if attempt == attempts {
			break
		}
		logger.Warn(ctx, "Query failed, retrying", "key", key, "attempt", attempt, "error", err, "wait", delay)
		select {
		case <-c.stop:
			attempt = attempts
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}

	c.mu.Lock()
	e = c.entry(key)
	e.fetching = false
	e.fetchCount++
	e.settledAt = c.now()
	if err != nil {
		e.err = err
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.invalid = false
		e.updatedAt = e.settledAt
	}
	c.mu.Unlock()

	if err != nil {
		timer.EndWithError(err, "attempts", attempts)
		return zero, err
	}
	timer.End()
	logger.Query(ctx, key, "fetched")
	return data, nil
}

func (c *Client[T]) cleanupLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.GCTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes entries nobody has read for GCTime
func (c *Client[T]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !e.fetching && now.Sub(e.lastUsed) > c.opts.GCTime {
			delete(c.entries, key)
		}
	}
}
