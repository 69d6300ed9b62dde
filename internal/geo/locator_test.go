package geo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-lookup/internal/weather"
)

type countingSource struct {
	calls  int32
	coords weather.Coordinates
	err    error
	block  bool
}

func (s *countingSource) Position(ctx context.Context) (weather.Coordinates, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.block {
		<-ctx.Done()
		return weather.Coordinates{}, ctx.Err()
	}
	return s.coords, s.err
}

func TestLocatorReusesRecentPosition(t *testing.T) {
	src := &countingSource{coords: weather.Coordinates{Lat: 51.5, Lon: -0.12}}
	l := NewLocator(src, time.Second, 10*time.Minute)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		pos, err := l.Locate(context.Background())
		if err != nil || pos != src.coords {
			t.Fatalf("unexpected result %v, %v", pos, err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected one acquisition, got %d", src.calls)
	}

	now = now.Add(11 * time.Minute)
	if _, err := l.Locate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected a stale position to be re-acquired, got %d calls", src.calls)
	}
}

func TestLocatorTimeoutIsPermissionError(t *testing.T) {
	l := NewLocator(&countingSource{block: true}, 20*time.Millisecond, 0)

	start := time.Now()
	_, err := l.Locate(context.Background())
	if !errors.Is(err, weather.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("locate did not honour its timeout")
	}
}

func TestLocatorFailures(t *testing.T) {
	l := NewLocator(&countingSource{err: errors.New("denied")}, time.Second, 0)
	if _, err := l.Locate(context.Background()); !errors.Is(err, weather.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}

	l = NewLocator(nil, 0, 0)
	if _, err := l.Locate(context.Background()); !errors.Is(err, weather.ErrPermission) {
		t.Fatalf("expected permission error without a source, got %v", err)
	}
}

func TestStaticSource(t *testing.T) {
	l := NewLocator(StaticSource{Coords: weather.Coordinates{Lat: 1, Lon: 2}}, 0, 0)
	pos, err := l.Locate(context.Background())
	if err != nil || pos.Lat != 1 || pos.Lon != 2 {
		t.Fatalf("unexpected result %v, %v", pos, err)
	}
}

func TestGeocoderSource(t *testing.T) {
	if _, err := NewGeocoderSource("", "Berlin", "DE"); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := NewGeocoderSource("key", " ", "DE"); err == nil {
		t.Fatal("expected error without home city")
	}

	src, err := NewGeocoderSource("key", "Berlin", "Germany")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.geocode = func(a geocoder.Address) (geocoder.Location, error) {
		if a.City != "Berlin" || a.Country != "Germany" {
			t.Errorf("unexpected address %+v", a)
		}
		return geocoder.Location{Latitude: 52.52, Longitude: 13.405}, nil
	}

	pos, err := NewLocator(src, time.Second, 0).Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Lat != 52.52 || pos.Lon != 13.405 {
		t.Fatalf("unexpected position %v", pos)
	}

	src.geocode = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	}
	if _, err := NewLocator(src, time.Second, 0).Locate(context.Background()); !errors.Is(err, weather.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
}
