package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

type AppConfig struct {
	// Provider access. The API key is required.
	APIKey          string        `validate:"required"`
	ProviderBaseURL string        `validate:"required,url"`
	HTTPTimeout     time.Duration `validate:"gt=0"`
	ProviderRPS     float64       `validate:"gte=0"`
	ProviderBurst   int           `validate:"gte=0"`
	ProviderRetries int           `validate:"gte=0,lte=5"`

	// Freshness windows.
	LocationTTL time.Duration `validate:"gt=0"`
	WeatherTTL  time.Duration `validate:"gt=0"`

	// Background jobs (serve only). FavoritesRefresh of 0 disables warm-up.
	CachePurgeInterval time.Duration `validate:"gt=0"`
	FavoritesRefresh   time.Duration `validate:"gte=0"`

	Language    string `validate:"required,bcp47_language_tag"`
	DefaultCity string

	// StorePath is a sqlite file, or "memory" for a throwaway store.
	StorePath string `validate:"required"`

	// Position source: fixed coordinates win over geocoding the home city.
	Home           *weather.Coordinates
	HomeCity       string
	HomeCountry    string
	GeocoderAPIKey string
	LocateTimeout  time.Duration `validate:"gt=0"`
	PositionMaxAge time.Duration `validate:"gte=0"`

	Host string
	Port string `validate:"required,numeric"`

	LogLevel       string `validate:"oneof=debug info warn error"`
	LogDevelopment bool
}

var validate = validator.New()

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults. A missing API key fails fast.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.APIKey = strings.TrimSpace(os.Getenv("ACCUWEATHER_API_KEY"))
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ACCUWEATHER_API_KEY is not set")
	}
	cfg.ProviderBaseURL = getenvDefault("ACCUWEATHER_BASE_URL", providers.DefaultAccuWeatherBaseURL)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderRPS, err = getenvFloat("PROVIDER_RPS", 5); err != nil {
		return nil, err
	}
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 5)
	cfg.ProviderRetries = getenvInt("PROVIDER_RETRIES", 2)

	if cfg.LocationTTL, err = getenvDuration("CACHE_LOCATION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WeatherTTL, err = getenvDuration("CACHE_WEATHER_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CachePurgeInterval, err = getenvDuration("CACHE_PURGE_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.FavoritesRefresh, err = getenvDuration("FAVORITES_REFRESH", 5*time.Minute); err != nil {
		return nil, err
	}

	cfg.Language = getenvDefault("WEATHER_LANGUAGE", "en-us")
	cfg.DefaultCity = os.Getenv("DEFAULT_CITY")
	cfg.StorePath = getenvDefault("STORE_PATH", "weather-lookup.db")

	if cfg.Home, err = loadHome(); err != nil {
		return nil, err
	}
	cfg.HomeCity = os.Getenv("HOME_CITY")
	cfg.HomeCountry = os.Getenv("HOME_COUNTRY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	if cfg.LocateTimeout, err = getenvDuration("LOCATE_TIMEOUT", geo.DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.PositionMaxAge, err = getenvDuration("POSITION_MAX_AGE", geo.DefaultMaxAge); err != nil {
		return nil, err
	}

	cfg.Host = getenvDefault("HOST", "127.0.0.1")
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogDevelopment, _ = strconv.ParseBool(os.Getenv("LOG_DEVELOPMENT"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address of the gateway.
func (c *AppConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func loadHome() (*weather.Coordinates, error) {
	lat := os.Getenv("HOME_LAT")
	lon := os.Getenv("HOME_LON")
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("HOME_LAT and HOME_LON must be set together")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HOME_LAT: %w", err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HOME_LON: %w", err)
	}
	return &weather.Coordinates{Lat: la, Lon: lo}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
