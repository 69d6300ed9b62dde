package geo

import (
	"context"
	"errors"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// GeocoderSource derives the position by geocoding a configured home
// address with the Google geocoding API.
type GeocoderSource struct {
	address geocoder.Address
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGeocoderSource configures the geocoder API key and the home address.
// The key is process-wide in the geocoder package.
func NewGeocoderSource(apiKey, city, country string) (*GeocoderSource, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("geocoder api key is not configured")
	}
	if strings.TrimSpace(city) == "" {
		return nil, errors.New("home city is not configured")
	}
	geocoder.ApiKey = apiKey

	return &GeocoderSource{
		address: geocoder.Address{
			City:    strings.TrimSpace(city),
			Country: strings.TrimSpace(country),
		},
		geocode: geocoder.Geocoding,
	}, nil
}

// Position geocodes the home address. The geocoder call is not
// context-aware, so a cancelled ctx abandons it.
func (s *GeocoderSource) Position(ctx context.Context) (weather.Coordinates, error) {
	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := s.geocode(s.address)
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Coordinates{}, r.err
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
