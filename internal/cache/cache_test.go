package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var fastBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestFetchHitWithinTTL(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(WithClock(clk.Now), WithBackoff(fastBackoff))

	var calls int32
	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := Fetch(context.Background(), c, "k", time.Minute, fn)
		if err != nil || v != "value" {
			t.Fatalf("unexpected result %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call within TTL, got %d", calls)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 1 {
		t.Fatalf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
	}

	clk.Advance(time.Minute)
	if _, err := Fetch(context.Background(), c, "k", time.Minute, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after expiry, got %d calls", calls)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	c := New(WithBackoff(fastBackoff), WithRetryable(weather.IsRetryable))

	var calls int32
	v, err := Fetch(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return 0, &weather.ProviderError{Op: "test", Status: 503, Err: errors.New("unavailable")}
		}
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("unexpected result %d, %v", v, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	c := New(WithBackoff(fastBackoff), WithRetryable(weather.IsRetryable))

	var calls int32
	_, err := Fetch(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, &weather.ProviderError{Op: "test", Status: 500, Err: errors.New("boom")}
	})
	if !errors.Is(err, weather.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if calls != int32(fastBackoff.MaxRetries+1) {
		t.Fatalf("expected %d attempts, got %d", fastBackoff.MaxRetries+1, calls)
	}
	if c.Len() != 0 {
		t.Fatal("errors must not be cached")
	}
}

func TestFetchDoesNotRetryInvalidInput(t *testing.T) {
	c := New(WithBackoff(fastBackoff), WithRetryable(weather.IsRetryable))

	var calls int32
	_, err := Fetch(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, weather.InvalidInput("bad")
	})
	if !errors.Is(err, weather.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("invalid input must not be retried, got %d attempts", calls)
	}
}

func TestFetchSharesInFlightCall(t *testing.T) {
	c := New(WithBackoff(fastBackoff))

	var calls int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, "k", time.Minute, fn)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected one shared call, got %d", calls)
	}
	for i, v := range results {
		if v != "shared" {
			t.Fatalf("caller %d got %q", i, v)
		}
	}
}

func TestFetchCancelledCallerStillFillsCache(t *testing.T) {
	c := New(WithBackoff(fastBackoff))

	release := make(chan struct{})
	done := make(chan struct{})
	fn := func(context.Context) (string, error) {
		defer close(done)
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fetch(ctx, c, "k", time.Minute, fn); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	<-done
	// set runs right after fn returns.
	time.Sleep(10 * time.Millisecond)

	v, err := Fetch(context.Background(), c, "k", time.Minute, func(context.Context) (string, error) {
		return "", errors.New("should not be called")
	})
	if err != nil || v != "late" {
		t.Fatalf("expected cached value, got %q, %v", v, err)
	}
}

func TestPurge(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(WithClock(clk.Now))

	c.set("short", 1, time.Minute)
	c.set("long", 2, time.Hour)

	clk.Advance(2 * time.Minute)
	if n := c.Purge(); n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Len())
	}
}

func TestRetryRejectsInvalidConfig(t *testing.T) {
	_, err := retry(context.Background(), BackoffConfig{MaxRetries: -1}, nil, func(context.Context) (int, error) {
		return 1, nil
	})
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}
