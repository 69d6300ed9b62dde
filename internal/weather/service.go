package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Query is the input of one pipeline run: exactly one of City, Coords or
// LocationID must be set.
type Query struct {
	City       string       `json:"city,omitempty"`
	Coords     *Coordinates `json:"coords,omitempty"`
	LocationID string       `json:"locationId,omitempty"`
	Lang       string       `json:"lang,omitempty"`
}

// Validate checks that exactly one input kind is present.
func (q Query) Validate() error {
	n := 0
	if strings.TrimSpace(q.City) != "" {
		n++
	}
	if q.Coords != nil {
		n++
	}
	if strings.TrimSpace(q.LocationID) != "" {
		n++
	}
	switch {
	case n == 0:
		return InvalidInput("a city name, coordinates or location id is required")
	case n > 1:
		return InvalidInput("only one of city, coordinates or location id may be given")
	}
	return nil
}

// WithLang returns a copy of q using lang.
func (q Query) WithLang(lang string) Query {
	q.Lang = lang
	return q
}

func (q Query) String() string {
	switch {
	case q.Coords != nil:
		return fmt.Sprintf("coords:%.4f,%.4f", q.Coords.Lat, q.Coords.Lon)
	case q.LocationID != "":
		return "id:" + q.LocationID
	default:
		return "city:" + q.City
	}
}

// Service resolves a city or position to a location and hydrates it with
// current conditions and the forecast window.
type Service struct {
	provider    Provider
	locator     Locator
	seeds       SeedSource
	defaultCity string
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocator sets the position source used by Here.
func WithLocator(l Locator) Option {
	return func(s *Service) {
		s.locator = l
	}
}

// WithSeeds sets the favorites/last-viewed source used when the position is
// unavailable.
func WithSeeds(seeds SeedSource) Option {
	return func(s *Service) {
		s.seeds = seeds
	}
}

// WithDefaultCity sets the last-resort city for Here.
func WithDefaultCity(city string) Option {
	return func(s *Service) {
		s.defaultCity = strings.TrimSpace(city)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service on top of provider, which is expected to
// be wrapped by the caching layer.
func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup runs the pipeline for q. A city with no provider match yields a
// StatusNotFound result and a nil error. On failure the first error
// encountered is returned unchanged and no partial result is exposed.
func (s *Service) Lookup(ctx context.Context, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	s.logger.Debug("lookup", zap.Stringer("query", q), zap.String("lang", q.Lang))

	switch {
	case q.Coords != nil:
		return s.lookupCoordinates(ctx, *q.Coords, q.Lang)
	case strings.TrimSpace(q.LocationID) != "":
		return s.hydrate(ctx, LocationRef{ID: strings.TrimSpace(q.LocationID)}, q.Lang, true)
	default:
		return s.lookupCity(ctx, q.City, q.Lang)
	}
}

func (s *Service) lookupCity(ctx context.Context, city, lang string) (Result, error) {
	ref, found, err := s.provider.SearchLocation(ctx, city, lang)
	if err != nil {
		return Result{}, err
	}
	if !found {
		s.logger.Info("no location matches query", zap.String("city", city))
		return Result{Status: StatusNotFound}, nil
	}
	return s.hydrate(ctx, ref, lang, true)
}

func (s *Service) lookupCoordinates(ctx context.Context, coords Coordinates, lang string) (Result, error) {
	ref, err := s.provider.ResolveByCoordinates(ctx, coords, lang)
	if err != nil {
		return Result{}, err
	}
	// The geoposition lookup is already localized.
	return s.hydrate(ctx, ref, lang, false)
}

// hydrate fans out the post-resolution fetches and joins on all of them.
// Siblings are never cancelled by an early failure.
func (s *Service) hydrate(ctx context.Context, ref LocationRef, lang string, localize bool) (Result, error) {
	var (
		g       errgroup.Group
		named   = ref
		current WeatherSnapshot
		raw     []ForecastDay
	)

	if localize {
		g.Go(func() error {
			r, err := s.provider.ResolveByKey(ctx, ref.ID, lang)
			if err != nil {
				return err
			}
			named = r
			return nil
		})
	}
	g.Go(func() error {
		w, err := s.provider.CurrentConditions(ctx, ref.ID, lang)
		if err != nil {
			return err
		}
		current = w
		return nil
	})
	g.Go(func() error {
		f, err := s.provider.Forecast(ctx, ref.ID, lang)
		if err != nil {
			return err
		}
		raw = f
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("weather lookup failed", zap.String("locationId", ref.ID), zap.Error(err))
		return Result{}, err
	}

	name := named.DisplayName
	if name == "" {
		name = ref.DisplayName
	}

	return Result{
		Status:      StatusSuccess,
		LocationID:  ref.ID,
		DisplayName: name,
		Weather:     &current,
		Forecast:    ForecastWindow(raw),
	}, nil
}

// Here looks up the weather at the user's position. When the position is
// unavailable it falls back to the first favorite, then the last viewed
// city, then the default city. Without any fallback the permission error is
// returned.
func (s *Service) Here(ctx context.Context, lang string) (Result, error) {
	permErr := ErrPermission
	if s.locator != nil {
		coords, err := s.locator.Locate(ctx)
		if err == nil {
			return s.lookupCoordinates(ctx, coords, lang)
		}
		if !errors.Is(err, ErrPermission) {
			return Result{}, err
		}
		s.logger.Info("position unavailable, using fallback", zap.Error(err))
		permErr = err
	}

	if s.seeds != nil {
		if favs := s.seeds.List(); len(favs) > 0 {
			return s.hydrate(ctx, LocationRef{ID: favs[0].LocationID, DisplayName: favs[0].FallbackName}, lang, true)
		}
		if last, ok := s.seeds.LastViewed(); ok {
			return s.hydrate(ctx, LocationRef{ID: last.LocationID, DisplayName: last.FallbackName}, lang, true)
		}
	}
	if s.defaultCity != "" {
		return s.lookupCity(ctx, s.defaultCity, lang)
	}
	return Result{}, permErr
}

// FavoritesWeather fetches current conditions for every favorite
// concurrently. A city that fails gets a nil Weather; the aggregate itself
// never fails. Output order follows favs.
func (s *Service) FavoritesWeather(ctx context.Context, favs []FavoriteCity, lang string) []FavoriteWeather {
	out := make([]FavoriteWeather, len(favs))

	var wg sync.WaitGroup
	for i, fav := range favs {
		i, fav := i, fav
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = s.favoriteTile(ctx, fav, lang)
		}()
	}
	wg.Wait()

	return out
}

func (s *Service) favoriteTile(ctx context.Context, fav FavoriteCity, lang string) FavoriteWeather {
	tile := FavoriteWeather{
		Favorite:    fav,
		DisplayName: fav.FallbackName,
	}

	ref, err := s.provider.ResolveByKey(ctx, fav.LocationID, lang)
	if err != nil {
		s.logger.Warn("favorite name lookup failed, using fallback name",
			zap.String("locationId", fav.LocationID), zap.Error(err))
	} else if ref.DisplayName != "" {
		tile.DisplayName = ref.DisplayName
	}

	w, err := s.provider.CurrentConditions(ctx, fav.LocationID, lang)
	if err != nil {
		s.logger.Warn("favorite weather fetch failed",
			zap.String("locationId", fav.LocationID), zap.Error(err))
		return tile
	}
	tile.Weather = &w
	return tile
}
