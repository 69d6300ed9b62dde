package store

import (
	"errors"
	"testing"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func TestPreferencesDefaults(t *testing.T) {
	prefs, err := NewPreferences(NewMemoryKV(), "en-us", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Preferences{Units: weather.UnitsMetric, Theme: ThemeLight, Language: "en-us"}
	if got := prefs.Get(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestPreferencesRejectsBadDefaultLanguage(t *testing.T) {
	if _, err := NewPreferences(NewMemoryKV(), "not a tag", nil); !errors.Is(err, weather.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPreferencesToggleAndPersist(t *testing.T) {
	kv := NewMemoryKV()
	prefs, _ := NewPreferences(kv, "en-us", nil)

	u, err := prefs.ToggleUnits()
	if err != nil || u != weather.UnitsImperial {
		t.Fatalf("expected imperial, got %s, %v", u, err)
	}
	th, err := prefs.ToggleTheme()
	if err != nil || th != ThemeDark {
		t.Fatalf("expected dark, got %s, %v", th, err)
	}
	changed, err := prefs.SetLanguage("fr-FR")
	if err != nil || !changed {
		t.Fatalf("expected language change, got %v, %v", changed, err)
	}

	reloaded, err := NewPreferences(kv, "en-us", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Preferences{Units: weather.UnitsImperial, Theme: ThemeDark, Language: "fr-FR"}
	if got := reloaded.Get(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// Scenario: a stored 20°C renders as 68°F after the toggle.
	if got := weather.FormatTemperature(20, reloaded.Units()); got != "68°F" {
		t.Fatalf("expected 68°F, got %s", got)
	}
}

func TestPreferencesNoOpWritesNothing(t *testing.T) {
	kv := &countingKV{KV: NewMemoryKV()}
	prefs, _ := NewPreferences(kv, "en-us", nil)

	if err := prefs.SetUnits(weather.UnitsMetric); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := prefs.SetTheme(ThemeLight); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed, _ := prefs.SetLanguage("EN-US"); changed {
		t.Fatal("language tags compare case-insensitively")
	}
	if kv.writes() != 0 {
		t.Fatalf("expected no writes, got %d", kv.writes())
	}
}

func TestPreferencesValidation(t *testing.T) {
	prefs, _ := NewPreferences(NewMemoryKV(), "en-us", nil)

	if err := prefs.SetUnits("kelvin"); !errors.Is(err, weather.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := prefs.SetTheme("sepia"); !errors.Is(err, weather.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := prefs.SetLanguage(""); !errors.Is(err, weather.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	bad := Preferences{Units: "kelvin", Theme: ThemeLight, Language: "en-us"}
	if err := bad.Validate(); !errors.Is(err, weather.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPreferencesIgnoreInvalidStoredValues(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeyUnits, []byte(`"kelvin"`))
	kv.Set(KeyTheme, []byte(`42`))
	kv.Set(KeyLanguage, []byte(`"!!"`))

	prefs, err := NewPreferences(kv, "de-de", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Preferences{Units: weather.UnitsMetric, Theme: ThemeLight, Language: "de-de"}
	if got := prefs.Get(); got != want {
		t.Fatalf("expected defaults, got %+v", got)
	}
}
