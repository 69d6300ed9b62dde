package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Purger drops expired cache entries.
type Purger interface {
	Purge() int
}

// FavoritesLister lists the favorite cities.
type FavoritesLister interface {
	List() []weather.FavoriteCity
}

// Config holds the job intervals. A zero FavoritesRefresh disables warm-up.
type Config struct {
	CachePurge       time.Duration
	FavoritesRefresh time.Duration
}

// Scheduler runs the gateway's background jobs: cache purging and warming
// the cache with the favorites' weather.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	purger    Purger
	favorites FavoritesLister
	language  func() string
	cfg       Config
	logger    *zap.Logger
}

// New creates a new Scheduler. language is read at each run so a changed
// preference applies.
func New(cfg Config, service *weather.Service, purger Purger, favorites FavoritesLister, language func() string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		purger:    purger,
		favorites: favorites,
		language:  language,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.purger != nil && s.cfg.CachePurge > 0 {
		if _, err := s.scheduler.Every(s.cfg.CachePurge).Do(s.purge); err != nil {
			return err
		}
	}

	if s.favorites != nil && s.cfg.FavoritesRefresh > 0 {
		if _, err := s.scheduler.Every(s.cfg.FavoritesRefresh).Do(func() { s.WarmFavorites() }); err != nil {
			return err
		}
	} else {
		s.logger.Info("scheduler: favorites warm-up disabled")
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) purge() {
	n := s.purger.Purge()
	s.logger.Debug("scheduler: purged expired cache entries", zap.Int("count", n))
}

// WarmFavorites fetches the weather of every favorite so tiles are served
// from cache. It returns how many cities failed.
func (s *Scheduler) WarmFavorites() int {
	favs := s.favorites.List()
	if len(favs) == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lang := ""
	if s.language != nil {
		lang = s.language()
	}

	tiles := s.service.FavoritesWeather(ctx, favs, lang)
	failed := 0
	for _, t := range tiles {
		if t.Weather == nil {
			failed++
		}
	}
	s.logger.Info("scheduler: warmed favorites", zap.Int("count", len(tiles)), zap.Int("failed", failed))
	return failed
}
