// Package geo acquires the user's position for the "weather here" flow.
package geo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 10 * time.Minute
)

// Source produces a raw position.
type Source interface {
	Position(ctx context.Context) (weather.Coordinates, error)
}

// Locator bounds a Source with an acquisition timeout and reuses a position
// younger than maxAge. Every failure is reported as weather.ErrPermission.
type Locator struct {
	source  Source
	timeout time.Duration
	maxAge  time.Duration
	now     func() time.Time

	mu       sync.Mutex
	last     weather.Coordinates
	acquired time.Time
	have     bool
}

var _ weather.Locator = (*Locator)(nil)

// NewLocator wraps source. A nil source always reports ErrPermission.
func NewLocator(source Source, timeout, maxAge time.Duration) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &Locator{
		source:  source,
		timeout: timeout,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (l *Locator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if l.source == nil {
		return weather.Coordinates{}, fmt.Errorf("%w: no position source configured", weather.ErrPermission)
	}

	l.mu.Lock()
	if l.have && l.now().Sub(l.acquired) < l.maxAge {
		pos := l.last
		l.mu.Unlock()
		return pos, nil
	}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	pos, err := l.source.Position(ctx)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrPermission, err)
	}

	l.mu.Lock()
	l.last, l.acquired, l.have = pos, l.now(), true
	l.mu.Unlock()

	return pos, nil
}

// StaticSource always returns the configured position.
type StaticSource struct {
	Coords weather.Coordinates
}

func (s StaticSource) Position(context.Context) (weather.Coordinates, error) {
	return s.Coords, nil
}
