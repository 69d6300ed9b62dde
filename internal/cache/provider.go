package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Default freshness windows. Place identifiers churn far less than
// conditions, so location lookups live longer.
const (
	DefaultLocationTTL = 30 * time.Minute
	DefaultWeatherTTL  = 5 * time.Minute
)

// CachedProvider wraps a weather.Provider with caching and retries.
type CachedProvider struct {
	next        weather.Provider
	cache       *Cache
	locationTTL time.Duration
	weatherTTL  time.Duration
}

var _ weather.Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps next. Zero TTLs fall back to the defaults.
func NewCachedProvider(next weather.Provider, c *Cache, locationTTL, weatherTTL time.Duration) *CachedProvider {
	if locationTTL <= 0 {
		locationTTL = DefaultLocationTTL
	}
	if weatherTTL <= 0 {
		weatherTTL = DefaultWeatherTTL
	}
	return &CachedProvider{
		next:        next,
		cache:       c,
		locationTTL: locationTTL,
		weatherTTL:  weatherTTL,
	}
}

// Cache exposes the underlying cache for purging and stats.
func (p *CachedProvider) Cache() *Cache {
	return p.cache
}

type searchResult struct {
	ref   weather.LocationRef
	found bool
}

func (p *CachedProvider) SearchLocation(ctx context.Context, query, lang string) (weather.LocationRef, bool, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return weather.LocationRef{}, false, weather.InvalidInput("search query must not be empty")
	}

	key := cacheKey("search", strings.ToLower(q), lang)
	r, err := Fetch(ctx, p.cache, key, p.locationTTL, func(ctx context.Context) (searchResult, error) {
		ref, found, err := p.next.SearchLocation(ctx, q, lang)
		return searchResult{ref: ref, found: found}, err
	})
	if err != nil {
		return weather.LocationRef{}, false, err
	}
	return r.ref, r.found, nil
}

func (p *CachedProvider) ResolveByCoordinates(ctx context.Context, coords weather.Coordinates, lang string) (weather.LocationRef, error) {
	pos := strconv.FormatFloat(coords.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(coords.Lon, 'f', 4, 64)
	return Fetch(ctx, p.cache, cacheKey("geo", pos, lang), p.locationTTL, func(ctx context.Context) (weather.LocationRef, error) {
		return p.next.ResolveByCoordinates(ctx, coords, lang)
	})
}

func (p *CachedProvider) ResolveByKey(ctx context.Context, locationID, lang string) (weather.LocationRef, error) {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return weather.LocationRef{}, weather.InvalidInput("location id must not be empty")
	}
	return Fetch(ctx, p.cache, cacheKey("location", id, lang), p.locationTTL, func(ctx context.Context) (weather.LocationRef, error) {
		return p.next.ResolveByKey(ctx, id, lang)
	})
}

func (p *CachedProvider) CurrentConditions(ctx context.Context, locationID, lang string) (weather.WeatherSnapshot, error) {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return weather.WeatherSnapshot{}, weather.InvalidInput("location id must not be empty")
	}
	return Fetch(ctx, p.cache, cacheKey("current", id, lang), p.weatherTTL, func(ctx context.Context) (weather.WeatherSnapshot, error) {
		return p.next.CurrentConditions(ctx, id, lang)
	})
}

func (p *CachedProvider) Forecast(ctx context.Context, locationID, lang string) ([]weather.ForecastDay, error) {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return nil, weather.InvalidInput("location id must not be empty")
	}
	days, err := Fetch(ctx, p.cache, cacheKey("forecast", id, lang), p.weatherTTL, func(ctx context.Context) ([]weather.ForecastDay, error) {
		return p.next.Forecast(ctx, id, lang)
	})
	if err != nil {
		return nil, err
	}
	// Callers must not alias the cached slice.
	return append([]weather.ForecastDay(nil), days...), nil
}

func cacheKey(op, input, lang string) string {
	return op + "|" + input + "|" + strings.ToLower(lang)
}
