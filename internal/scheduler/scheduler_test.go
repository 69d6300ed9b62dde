package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

type stubProvider struct {
	mu    sync.Mutex
	langs []string
}

func (p *stubProvider) SearchLocation(context.Context, string, string) (weather.LocationRef, bool, error) {
	return weather.LocationRef{}, false, nil
}

func (p *stubProvider) ResolveByCoordinates(context.Context, weather.Coordinates, string) (weather.LocationRef, error) {
	return weather.LocationRef{}, nil
}

func (p *stubProvider) ResolveByKey(_ context.Context, id, lang string) (weather.LocationRef, error) {
	return weather.LocationRef{ID: id, DisplayName: id}, nil
}

func (p *stubProvider) CurrentConditions(_ context.Context, id, lang string) (weather.WeatherSnapshot, error) {
	p.mu.Lock()
	p.langs = append(p.langs, lang)
	p.mu.Unlock()
	if id == "broken" {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Op: "current", Status: 500, Err: errors.New("boom")}
	}
	return weather.WeatherSnapshot{Description: "Sunny"}, nil
}

func (p *stubProvider) Forecast(context.Context, string, string) ([]weather.ForecastDay, error) {
	return nil, nil
}

type staticFavorites []weather.FavoriteCity

func (f staticFavorites) List() []weather.FavoriteCity { return f }

type countingPurger struct {
	n int32
}

func (p *countingPurger) Purge() int {
	atomic.AddInt32(&p.n, 1)
	return 0
}

func TestWarmFavorites(t *testing.T) {
	p := &stubProvider{}
	favs := staticFavorites{
		{LocationID: "328328", FallbackName: "London"},
		{LocationID: "broken", FallbackName: "Broken"},
	}
	s := New(Config{}, weather.NewService(p), nil, favs, func() string { return "de-de" }, nil)

	if failed := s.WarmFavorites(); failed != 1 {
		t.Fatalf("expected 1 failed city, got %d", failed)
	}
	for _, l := range p.langs {
		if l != "de-de" {
			t.Fatalf("expected the preferred language, got %q", l)
		}
	}
}

func TestWarmFavoritesWithoutFavorites(t *testing.T) {
	p := &stubProvider{}
	s := New(Config{}, weather.NewService(p), nil, staticFavorites{}, nil, nil)

	if failed := s.WarmFavorites(); failed != 0 {
		t.Fatalf("expected no failures, got %d", failed)
	}
	if len(p.langs) != 0 {
		t.Fatal("expected no provider calls")
	}
}

func TestStartRunsPurge(t *testing.T) {
	purger := &countingPurger{}
	s := New(Config{CachePurge: 10 * time.Millisecond}, weather.NewService(&stubProvider{}), purger, nil, nil, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&purger.n) == 0 {
		t.Fatal("expected the purge job to run")
	}
}
