package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

func TestOpenStore(t *testing.T) {
	kv, err := openStore("memory", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := kv.(*store.MemoryKV); !ok {
		t.Fatalf("expected memory store, got %T", kv)
	}

	kv, err = openStore(filepath.Join(t.TempDir(), "weather.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeStore(kv)
	if _, ok := kv.(*store.SQLiteKV); !ok {
		t.Fatalf("expected sqlite store, got %T", kv)
	}
}

func TestPositionSource(t *testing.T) {
	log := zap.NewNop()

	if src := positionSource(&config.AppConfig{}, log); src != nil {
		t.Fatalf("expected no source, got %T", src)
	}

	home := &weather.Coordinates{Lat: 1, Lon: 2}
	if _, ok := positionSource(&config.AppConfig{Home: home, HomeCity: "Berlin"}, log).(geo.StaticSource); !ok {
		t.Fatal("fixed coordinates should win")
	}

	// A home city without a geocoder key disables the source.
	if src := positionSource(&config.AppConfig{HomeCity: "Berlin"}, log); src != nil {
		t.Fatalf("expected no source, got %T", src)
	}

	if _, ok := positionSource(&config.AppConfig{HomeCity: "Berlin", GeocoderAPIKey: "key"}, log).(*geo.GeocoderSource); !ok {
		t.Fatal("expected geocoder source")
	}
}

func TestNewApplication(t *testing.T) {
	cfg := &config.AppConfig{
		APIKey:          "secret",
		ProviderBaseURL: "http://127.0.0.1:0",
		ProviderRetries: 1,
		Language:        "en-us",
		StorePath:       "memory",
		LogLevel:        "error",
	}
	app, err := newApplication(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer app.close()

	if app.lang() != "en-us" {
		t.Fatalf("expected stored language, got %q", app.lang())
	}
	flagLang = "fr-fr"
	defer func() { flagLang = "" }()
	if app.lang() != "fr-fr" {
		t.Fatalf("expected flag language, got %q", app.lang())
	}
}
