package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads a value for a key when the cache cannot serve it.
type FetchFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	value    interface{}
	expires  time.Time
	lastRead time.Time
}

// AggregationCache is a time-keyed cache with per-key TTL. Concurrent
// callers for the same missing key share a single in-flight fetch; a fetch
// failure is propagated to every waiter and nothing is cached.
//
// The cache is unbounded by design; a periodic sweep drops entries that
// have not been read for longer than the idle window.
type AggregationCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	flight  singleflight.Group
	clock   func() time.Time

	sweepInterval time.Duration
	idleEviction  time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
}

type Option func(*AggregationCache)

// WithSweep configures the background eviction sweep.
func WithSweep(interval, idle time.Duration) Option {
	return func(c *AggregationCache) {
		c.sweepInterval = interval
		c.idleEviction = idle
	}
}

func New(opts ...Option) *AggregationCache {
	c := &AggregationCache{
		entries:       make(map[string]*entry),
		clock:         time.Now,
		sweepInterval: 5 * time.Minute,
		idleEviction:  time.Hour,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the live value for key, or runs fetchFn to load it. Hits
// never block. On a miss, exactly one fetch runs per key; every concurrent
// caller observes its result. The second return reports whether the value
// came from cache.
func (c *AggregationCache) Get(ctx context.Context, key string, ttl time.Duration, fetchFn FetchFunc) (interface{}, bool, error) {
	if v, ok := c.lookup(key); ok {
		return v, true, nil
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// Re-check inside the flight: an earlier flight may have stored the
		// value between our miss and this call.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fetchFn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

func (c *AggregationCache) lookup(key string) (interface{}, bool) {
	now := c.clock()
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || now.After(e.expires) {
		return nil, false
	}
	c.mu.Lock()
	e.lastRead = now
	c.mu.Unlock()
	return e.value, true
}

func (c *AggregationCache) store(key string, v interface{}, ttl time.Duration) {
	now := c.clock()
	c.mu.Lock()
	c.entries[key] = &entry{value: v, expires: now.Add(ttl), lastRead: now}
	c.mu.Unlock()
}

// Put inserts a value directly, bypassing fetch. Used by the live stream
// warmer to keep hot keys fresh.
func (c *AggregationCache) Put(key string, v interface{}, ttl time.Duration) {
	c.store(key, v, ttl)
}

// Invalidate drops a key.
func (c *AggregationCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of resident entries.
func (c *AggregationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper launches the periodic eviction loop. It drops entries
// unread for longer than the idle window, expired or not.
func (c *AggregationCache) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// Stop halts the sweeper.
func (c *AggregationCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *AggregationCache) sweep() {
	cutoff := c.clock().Add(-c.idleEviction)
	c.mu.Lock()
	for k, e := range c.entries {
		if e.lastRead.Before(cutoff) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// SetClock overrides the time source for tests.
func (c *AggregationCache) SetClock(fn func() time.Time) {
	c.clock = fn
}
