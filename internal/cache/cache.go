package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is an in-memory, keyed cache with a per-entry freshness window.
// Concurrent fetches of the same key share one in-flight call, and failed
// fetches are retried with exponential backoff. Errors are never cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	backoff   BackoffConfig
	retryable func(error) bool
	now       func() time.Time
	logger    *zap.Logger

	hits   int
	misses int
}

type entry struct {
	value   any
	expires time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithBackoff sets the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(c *Cache) {
		c.backoff = b
	}
}

// WithRetryable sets the predicate deciding whether an error is retried.
func WithRetryable(fn func(error) bool) Option {
	return func(c *Cache) {
		c.retryable = fn
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		backoff: DefaultBackoff,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the fresh cached value for key, or calls fn (with retries)
// and caches its result for ttl. A caller whose ctx ends stops waiting, but
// the shared call runs to completion and still fills the cache.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.lookup(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Another flight may have filled the entry since our lookup.
		if v, ok := c.peek(key); ok {
			return v, nil
		}

		v, err := retry(context.WithoutCancel(ctx), c.backoff, c.retryable, fn)
		if err != nil {
			c.logger.Debug("cache fetch failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		c.set(key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		t, ok := r.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: unexpected value type %T for key %q", r.Val, key)
		}
		return t, nil
	}
}

// lookup is peek plus hit/miss accounting.
func (c *Cache) lookup(key string) (any, bool) {
	v, ok := c.peek(key)

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if ok {
		c.logger.Debug("cache hit", zap.String("key", key))
	}
	return v, ok
}

func (c *Cache) peek(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(key string, v any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: v, expires: c.now().Add(ttl)}
}

// Purge removes expired entries and returns how many were dropped.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns statistics about cache hits and misses.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
