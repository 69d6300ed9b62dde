package weather

import (
	"time"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationRef identifies a place resolved by the provider.
// ID is the provider's opaque, stable location key; DisplayName is used as
// the fallback name when a localized one cannot be fetched.
type LocationRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Country     string `json:"country,omitempty"`
}

// Temperature is a value in the provider's metric unit (Celsius).
type Temperature struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Wind holds speed in km/h and the compass direction.
type Wind struct {
	SpeedKmh  float64 `json:"speedKmh"`
	Degrees   int     `json:"degrees"`
	Direction string  `json:"direction"`
}

// WeatherSnapshot is the normalized current conditions for a location at a
// point in time. Snapshots are never mutated; a newer fetch replaces them.
type WeatherSnapshot struct {
	ObservedAt  time.Time   `json:"observedAt"`
	Description string      `json:"description"`
	Icon        int         `json:"icon"`
	IsDaytime   bool        `json:"isDaytime"`
	Temperature Temperature `json:"temperature"`
	FeelsLike   Temperature `json:"feelsLike"`
	Humidity    int         `json:"humidityPercent"`
	Wind        Wind        `json:"wind"`
	PressureMb  float64     `json:"pressureMb"`
	UVIndex     int         `json:"uvIndex"`
	UVIndexText string      `json:"uvIndexText,omitempty"`
	CloudCover  int         `json:"cloudCoverPercent"`

	HasPrecipitation  bool   `json:"hasPrecipitation"`
	PrecipitationType string `json:"precipitationType,omitempty"`
}

// ForecastDay is one day of the daily forecast. Temperatures are Celsius.
type ForecastDay struct {
	Date             time.Time `json:"date"`
	MinTemp          float64   `json:"minTemp"`
	MaxTemp          float64   `json:"maxTemp"`
	DayIcon          int       `json:"dayIcon"`
	DayDescription   string    `json:"dayDescription"`
	NightIcon        int       `json:"nightIcon"`
	NightDescription string    `json:"nightDescription"`
	HasPrecipitation bool      `json:"hasPrecipitation"`
}

// FavoriteCity is a user-selected location. Favorites are keyed strictly by
// LocationID; FallbackName is shown when the localized name is unavailable.
type FavoriteCity struct {
	LocationID   string `json:"locationId"`
	FallbackName string `json:"fallbackName"`
}

// Status is the externally visible state of a pipeline invocation.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusNotFound Status = "notFound"
	StatusError    Status = "error"
)

// Result is the outcome of a resolution and aggregation run.
// Weather and Forecast are only set when Status is StatusSuccess.
type Result struct {
	Status      Status           `json:"status"`
	LocationID  string           `json:"locationId,omitempty"`
	DisplayName string           `json:"displayName,omitempty"`
	Weather     *WeatherSnapshot `json:"weather,omitempty"`
	Forecast    []ForecastDay    `json:"forecast,omitempty"`
}

// FavoriteWeather is one tile of the favorites aggregate. Weather is nil
// when the city's fetch failed.
type FavoriteWeather struct {
	Favorite    FavoriteCity     `json:"favorite"`
	DisplayName string           `json:"displayName"`
	Weather     *WeatherSnapshot `json:"weather"`
}
