package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/cache"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/logging"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// application holds the wired components shared by every command.
type application struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	kv          store.KV
	favorites   *store.Favorites
	preferences *store.PreferenceStore
	cache       *cache.Cache
	service     *weather.Service
	slot        *weather.Slot
}

func newApplication(cfg *config.AppConfig) (*application, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, err
	}

	kv, err := openStore(cfg.StorePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	favorites, err := store.NewFavorites(kv, logger.Named("favorites"))
	if err != nil {
		closeStore(kv)
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	preferences, err := store.NewPreferences(kv, cfg.Language, logger.Named("preferences"))
	if err != nil {
		closeStore(kv)
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	accu := providers.NewAccuWeatherProvider(providers.HTTPClientConfig{
		Client:            httpClient,
		RequestsPerSecond: cfg.ProviderRPS,
		Burst:             cfg.ProviderBurst,
	}, cfg.ProviderBaseURL, cfg.APIKey)

	backoff := cache.DefaultBackoff
	backoff.MaxRetries = cfg.ProviderRetries
	c := cache.New(
		cache.WithBackoff(backoff),
		cache.WithRetryable(weather.IsRetryable),
		cache.WithLogger(logger.Named("cache")),
	)
	cached := cache.NewCachedProvider(accu, c, cfg.LocationTTL, cfg.WeatherTTL)
	logger.Debug("weather provider configured",
		zap.String("provider", accu.Name()),
		zap.Duration("locationTTL", cfg.LocationTTL),
		zap.Duration("weatherTTL", cfg.WeatherTTL))

	locator := geo.NewLocator(positionSource(cfg, logger), cfg.LocateTimeout, cfg.PositionMaxAge)

	service := weather.NewService(cached,
		weather.WithLocator(locator),
		weather.WithSeeds(favorites),
		weather.WithDefaultCity(cfg.DefaultCity),
		weather.WithLogger(logger.Named("service")),
	)
	slot := weather.NewSlot(service, favorites, logger.Named("slot"))

	return &application{
		cfg:         cfg,
		logger:      logger,
		kv:          kv,
		favorites:   favorites,
		preferences: preferences,
		cache:       cached.Cache(),
		service:     service,
		slot:        slot,
	}, nil
}

func (a *application) close() {
	a.slot.Wait()
	closeStore(a.kv)
	_ = a.logger.Sync()
}

// lang returns the --lang flag when set, else the stored preference.
func (a *application) lang() string {
	if l := strings.TrimSpace(flagLang); l != "" {
		return l
	}
	return a.preferences.Language()
}

func openStore(path string, logger *zap.Logger) (store.KV, error) {
	if strings.EqualFold(path, "memory") {
		logger.Info("using in-memory store, favorites and preferences will not persist")
		return store.NewMemoryKV(), nil
	}
	return store.NewSQLite(path, logger.Named("sqlite"))
}

func closeStore(kv store.KV) {
	if c, ok := kv.(io.Closer); ok {
		_ = c.Close()
	}
}

// positionSource picks fixed coordinates, then the geocoded home city. With
// neither configured the locator always reports a permission error.
func positionSource(cfg *config.AppConfig, logger *zap.Logger) geo.Source {
	if cfg.Home != nil {
		return geo.StaticSource{Coords: *cfg.Home}
	}
	if cfg.HomeCity == "" {
		return nil
	}
	src, err := geo.NewGeocoderSource(cfg.GeocoderAPIKey, cfg.HomeCity, cfg.HomeCountry)
	if err != nil {
		logger.Warn("geocoder position source disabled", zap.Error(err))
		return nil
	}
	return src
}
