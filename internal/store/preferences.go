package store

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	KeyUnits    = "units"
	KeyTheme    = "theme"
	KeyLanguage = "language"
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences are the user's display settings.
type Preferences struct {
	Units    weather.Units `json:"units" validate:"oneof=metric imperial"`
	Theme    Theme         `json:"theme" validate:"oneof=light dark"`
	Language string        `json:"language" validate:"bcp47_language_tag"`
}

var validate = validator.New()

// Validate checks every field against its allowed values.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return weather.InvalidInput("%v", err)
	}
	return nil
}

// PreferenceStore keeps Preferences in memory and writes each field through
// to its own key.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs Preferences

	units    Storage[weather.Units]
	theme    Storage[Theme]
	language Storage[string]
	logger   *zap.Logger
}

// NewPreferences loads stored preferences. Missing or invalid values fall
// back to metric, light and defaultLanguage.
func NewPreferences(kv KV, defaultLanguage string, logger *zap.Logger) (*PreferenceStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate.Var(defaultLanguage, "bcp47_language_tag") != nil {
		return nil, weather.InvalidInput("default language %q is not a language tag", defaultLanguage)
	}

	s := &PreferenceStore{
		units:    NewDocument[weather.Units](kv, KeyUnits, nil),
		theme:    NewDocument[Theme](kv, KeyTheme, nil),
		language: NewDocument[string](kv, KeyLanguage, nil),
		logger:   logger,
		prefs: Preferences{
			Units:    weather.UnitsMetric,
			Theme:    ThemeLight,
			Language: defaultLanguage,
		},
	}

	if u, err := s.units.Load(); err != nil && !errors.Is(err, ErrSchema) {
		return nil, err
	} else if validate.Var(string(u), "oneof=metric imperial") == nil {
		s.prefs.Units = u
	} else if u != "" {
		logger.Warn("ignoring stored units", zap.String("units", string(u)))
	}

	if t, err := s.theme.Load(); err != nil && !errors.Is(err, ErrSchema) {
		return nil, err
	} else if validate.Var(string(t), "oneof=light dark") == nil {
		s.prefs.Theme = t
	} else if t != "" {
		logger.Warn("ignoring stored theme", zap.String("theme", string(t)))
	}

	if l, err := s.language.Load(); err != nil && !errors.Is(err, ErrSchema) {
		return nil, err
	} else if l != "" && validate.Var(l, "bcp47_language_tag") == nil {
		s.prefs.Language = l
	} else if l != "" {
		logger.Warn("ignoring stored language", zap.String("language", l))
	}

	return s, nil
}

// Get returns the current preferences.
func (s *PreferenceStore) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *PreferenceStore) Units() weather.Units {
	return s.Get().Units
}

func (s *PreferenceStore) Language() string {
	return s.Get().Language
}

func (s *PreferenceStore) SetUnits(u weather.Units) error {
	if validate.Var(string(u), "oneof=metric imperial") != nil {
		return weather.InvalidInput("unknown units %q", u)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs.Units == u {
		return nil
	}
	if err := s.units.Save(u); err != nil {
		return err
	}
	s.prefs.Units = u
	return nil
}

// ToggleUnits flips metric/imperial and returns the new value.
func (s *PreferenceStore) ToggleUnits() (weather.Units, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs.Units.Toggle()
	if err := s.units.Save(next); err != nil {
		return s.prefs.Units, err
	}
	s.prefs.Units = next
	return next, nil
}

func (s *PreferenceStore) SetTheme(t Theme) error {
	if validate.Var(string(t), "oneof=light dark") != nil {
		return weather.InvalidInput("unknown theme %q", t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs.Theme == t {
		return nil
	}
	if err := s.theme.Save(t); err != nil {
		return err
	}
	s.prefs.Theme = t
	return nil
}

// ToggleTheme flips light/dark and returns the new value.
func (s *PreferenceStore) ToggleTheme() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs.Theme.Toggle()
	if err := s.theme.Save(next); err != nil {
		return s.prefs.Theme, err
	}
	s.prefs.Theme = next
	return next, nil
}

// SetLanguage stores lang and reports whether it changed.
func (s *PreferenceStore) SetLanguage(lang string) (bool, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" || validate.Var(lang, "bcp47_language_tag") != nil {
		return false, weather.InvalidInput("%q is not a language tag", lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.EqualFold(s.prefs.Language, lang) {
		return false, nil
	}
	if err := s.language.Save(lang); err != nil {
		return false, err
	}
	s.prefs.Language = lang
	return true, nil
}
