package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Storage keys.
const (
	KeyFavorites  = "favoriteCities"
	KeyLastViewed = "lastViewedCity"

	// KeyLegacyFavorites held favorites as bare city names. It is deleted on
	// load and never migrated.
	KeyLegacyFavorites = "favorites"
)

// Favorites is the ordered set of favorite cities, keyed by location id,
// plus the last viewed city. Every mutation is written through to storage
// before it becomes visible; no-op calls write nothing.
type Favorites struct {
	mu    sync.RWMutex
	items []weather.FavoriteCity
	last  *weather.FavoriteCity

	list     Storage[[]weather.FavoriteCity]
	lastSlot Storage[*weather.FavoriteCity]
	logger   *zap.Logger
}

var (
	_ weather.SeedSource         = (*Favorites)(nil)
	_ weather.LastViewedRecorder = (*Favorites)(nil)
)

// NewFavorites loads the favorites from kv. Malformed entries are dropped,
// an unreadable document is discarded, and the legacy key is removed; none
// of these fail the load.
func NewFavorites(kv KV, logger *zap.Logger) (*Favorites, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dropped := 0
	list := NewDocument(kv, KeyFavorites, func(raw []byte) ([]weather.FavoriteCity, error) {
		items, n, err := decodeFavorites(raw)
		dropped = n
		return items, err
	})
	lastSlot := NewDocument(kv, KeyLastViewed, decodeLastViewed)

	f := &Favorites{
		list:     list,
		lastSlot: lastSlot,
		logger:   logger,
	}

	if _, err := kv.Get(KeyLegacyFavorites); err == nil {
		logger.Info("removing legacy favorites", zap.String("key", KeyLegacyFavorites))
		if err := kv.Delete(KeyLegacyFavorites); err != nil {
			return nil, fmt.Errorf("delete legacy favorites: %w", err)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rewrite := false

	items, err := list.Load()
	switch {
	case errors.Is(err, ErrSchema):
		logger.Warn("discarding unreadable favorites", zap.Error(err))
		items, rewrite = nil, true
	case err != nil:
		return nil, err
	case dropped > 0:
		logger.Warn("dropped malformed favorites", zap.Int("count", dropped))
		rewrite = true
	}

	last, err := lastSlot.Load()
	switch {
	case errors.Is(err, ErrSchema):
		logger.Warn("discarding unreadable last viewed city", zap.Error(err))
		last, rewrite = nil, true
	case err != nil:
		return nil, err
	}

	f.items = items
	f.last = last

	if rewrite {
		if err := f.persist(f.items, f.last); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Add appends a favorite. It reports false, and writes nothing, when the
// location id is already present.
func (f *Favorites) Add(locationID, displayName string) (bool, error) {
	id := strings.TrimSpace(locationID)
	name := strings.TrimSpace(displayName)
	if id == "" || name == "" {
		return false, weather.InvalidInput("favorite needs a location id and a name")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.indexOf(id) >= 0 {
		return false, nil
	}

	next := make([]weather.FavoriteCity, len(f.items), len(f.items)+1)
	copy(next, f.items)
	next = append(next, weather.FavoriteCity{LocationID: id, FallbackName: name})

	if err := f.saveItems(next); err != nil {
		return false, err
	}
	f.items = next
	return true, nil
}

// Remove deletes a favorite by location id. It reports false, and writes
// nothing, when the id is not a member.
func (f *Favorites) Remove(locationID string) (bool, error) {
	id := strings.TrimSpace(locationID)

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := make([]weather.FavoriteCity, 0, len(f.items)-1)
	next = append(next, f.items[:i]...)
	next = append(next, f.items[i+1:]...)

	if err := f.saveItems(next); err != nil {
		return false, err
	}
	f.items = next
	return true, nil
}

func (f *Favorites) Contains(locationID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(strings.TrimSpace(locationID)) >= 0
}

// List returns the favorites in insertion order.
func (f *Favorites) List() []weather.FavoriteCity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]weather.FavoriteCity{}, f.items...)
}

// LastViewed returns the last viewed city, if any.
func (f *Favorites) LastViewed() (weather.FavoriteCity, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.last == nil {
		return weather.FavoriteCity{}, false
	}
	return *f.last, true
}

// RecordLastViewed overwrites the last viewed city. Recording the id that is
// already stored is a no-op, so repeated successful renders of the same
// city cause no writes.
func (f *Favorites) RecordLastViewed(locationID, displayName string) (bool, error) {
	id := strings.TrimSpace(locationID)
	name := strings.TrimSpace(displayName)
	if id == "" || name == "" {
		return false, weather.InvalidInput("last viewed city needs a location id and a name")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.last != nil && f.last.LocationID == id {
		return false, nil
	}

	last := &weather.FavoriteCity{LocationID: id, FallbackName: name}
	if err := f.lastSlot.Save(last); err != nil {
		return false, err
	}
	f.last = last
	return true, nil
}

func (f *Favorites) indexOf(id string) int {
	for i, it := range f.items {
		if it.LocationID == id {
			return i
		}
	}
	return -1
}

// persist mirrors the full sequence and the last viewed slot.
// Each mutation writes only the key it changes, so a failed write leaves
// storage and memory in agreement.
func (f *Favorites) saveItems(items []weather.FavoriteCity) error {
	if items == nil {
		items = []weather.FavoriteCity{}
	}
	return f.list.Save(items)
}

func (f *Favorites) persist(items []weather.FavoriteCity, last *weather.FavoriteCity) error {
	if err := f.saveItems(items); err != nil {
		return err
	}
	return f.lastSlot.Save(last)
}

// decodeFavorites accepts a JSON array and keeps the well-formed, non-empty,
// first-seen entries. It returns how many entries were dropped.
func decodeFavorites(raw []byte) ([]weather.FavoriteCity, int, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	seen := make(map[string]bool, len(elems))
	items := make([]weather.FavoriteCity, 0, len(elems))
	for _, e := range elems {
		fav, ok := decodeFavorite(e)
		if !ok || seen[fav.LocationID] {
			continue
		}
		seen[fav.LocationID] = true
		items = append(items, fav)
	}
	return items, len(elems) - len(items), nil
}

func decodeLastViewed(raw []byte) (*weather.FavoriteCity, error) {
	if strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	fav, ok := decodeFavorite(raw)
	if !ok {
		return nil, fmt.Errorf("%w: malformed last viewed city", ErrSchema)
	}
	return &fav, nil
}

func decodeFavorite(raw []byte) (weather.FavoriteCity, bool) {
	var fav weather.FavoriteCity
	if err := json.Unmarshal(raw, &fav); err != nil {
		return weather.FavoriteCity{}, false
	}
	fav.LocationID = strings.TrimSpace(fav.LocationID)
	fav.FallbackName = strings.TrimSpace(fav.FallbackName)
	if fav.LocationID == "" || fav.FallbackName == "" {
		return weather.FavoriteCity{}, false
	}
	return fav, true
}
