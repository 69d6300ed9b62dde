package weather

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// fakeProvider is an in-memory Provider that counts calls per operation.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int

	cities     map[string]LocationRef // lower-cased query -> ref
	names      map[string]string      // id -> localized name
	conditions map[string]WeatherSnapshot
	forecasts  map[string][]ForecastDay
	byCoords   LocationRef

	// failures per "op|id" key
	fail map[string]error

	// delay per city query, used to order concurrent lookups
	delay map[string]time.Duration
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls:      map[string]int{},
		cities:     map[string]LocationRef{},
		names:      map[string]string{},
		conditions: map[string]WeatherSnapshot{},
		forecasts:  map[string][]ForecastDay{},
		fail:       map[string]error{},
		delay:      map[string]time.Duration{},
	}
}

func (f *fakeProvider) addCity(query, id, name string, tempC float64) {
	f.cities[strings.ToLower(query)] = LocationRef{ID: id, DisplayName: name}
	f.names[id] = name
	f.conditions[id] = WeatherSnapshot{
		Description: "Sunny",
		Temperature: Temperature{Value: tempC, Unit: "C"},
	}
	f.forecasts[id] = days(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 5)
}

func (f *fakeProvider) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeProvider) record(op, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op+"|"+key]
}

func (f *fakeProvider) SearchLocation(ctx context.Context, query, lang string) (LocationRef, bool, error) {
	if d := f.delay[strings.ToLower(query)]; d > 0 {
		time.Sleep(d)
	}
	if err := f.record("search", query); err != nil {
		return LocationRef{}, false, err
	}
	ref, ok := f.cities[strings.ToLower(query)]
	return ref, ok, nil
}

func (f *fakeProvider) ResolveByCoordinates(ctx context.Context, coords Coordinates, lang string) (LocationRef, error) {
	if err := f.record("coords", ""); err != nil {
		return LocationRef{}, err
	}
	return f.byCoords, nil
}

func (f *fakeProvider) ResolveByKey(ctx context.Context, id, lang string) (LocationRef, error) {
	if err := f.record("key", id); err != nil {
		return LocationRef{}, err
	}
	name, ok := f.names[id]
	if !ok {
		return LocationRef{}, &ProviderError{Op: "key", Status: 404, Err: errors.New("unknown id")}
	}
	if lang == "fr-fr" {
		name = name + " (fr)"
	}
	return LocationRef{ID: id, DisplayName: name}, nil
}

func (f *fakeProvider) CurrentConditions(ctx context.Context, id, lang string) (WeatherSnapshot, error) {
	if err := f.record("current", id); err != nil {
		return WeatherSnapshot{}, err
	}
	return f.conditions[id], nil
}

func (f *fakeProvider) Forecast(ctx context.Context, id, lang string) ([]ForecastDay, error) {
	if err := f.record("forecast", id); err != nil {
		return nil, err
	}
	return f.forecasts[id], nil
}

func days(start time.Time, n int) []ForecastDay {
	out := make([]ForecastDay, n)
	for i := range out {
		out[i] = ForecastDay{
			Date:    start.AddDate(0, 0, i),
			MinTemp: float64(10 + i),
			MaxTemp: float64(20 + i),
		}
	}
	return out
}

type fakeSeeds struct {
	favs []FavoriteCity
	last *FavoriteCity
}

func (s fakeSeeds) List() []FavoriteCity { return s.favs }

func (s fakeSeeds) LastViewed() (FavoriteCity, bool) {
	if s.last == nil {
		return FavoriteCity{}, false
	}
	return *s.last, true
}

type fakeLocator struct {
	coords Coordinates
	err    error
}

func (l fakeLocator) Locate(context.Context) (Coordinates, error) {
	return l.coords, l.err
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) RecordLastViewed(id, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id)
	return true, nil
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
