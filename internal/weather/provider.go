package weather

import (
	"context"
)

// Provider abstracts the weather provider's location and weather endpoints.
// Implementations perform no caching and no retries.
type Provider interface {
	// SearchLocation resolves a free-text city name. found is false, with a
	// nil error, when the provider has no match.
	SearchLocation(ctx context.Context, query, lang string) (ref LocationRef, found bool, err error)
	ResolveByCoordinates(ctx context.Context, coords Coordinates, lang string) (LocationRef, error)
	ResolveByKey(ctx context.Context, locationID, lang string) (LocationRef, error)
	CurrentConditions(ctx context.Context, locationID, lang string) (WeatherSnapshot, error)
	// Forecast returns the raw daily forecast, today first, at most 5 days.
	Forecast(ctx context.Context, locationID, lang string) ([]ForecastDay, error)
}

// Locator acquires the user's current position. Failures are reported as
// ErrPermission.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// SeedSource exposes the stored cities used when the position is unknown.
type SeedSource interface {
	List() []FavoriteCity
	LastViewed() (FavoriteCity, bool)
}

// LastViewedRecorder stores the most recently viewed city.
type LastViewedRecorder interface {
	RecordLastViewed(locationID, displayName string) (bool, error)
}
