package weather

import "testing"

func TestFormatTemperature(t *testing.T) {
	tests := []struct {
		celsius float64
		units   Units
		want    string
	}{
		{20, UnitsMetric, "20°C"},
		{20, UnitsImperial, "68°F"},
		{18.4, UnitsMetric, "18°C"},
		{-40, UnitsImperial, "-40°F"},
		{0, UnitsImperial, "32°F"},
	}
	for _, tt := range tests {
		if got := FormatTemperature(tt.celsius, tt.units); got != tt.want {
			t.Errorf("FormatTemperature(%v, %s) = %q, want %q", tt.celsius, tt.units, got, tt.want)
		}
	}
}

func TestUnitsToggle(t *testing.T) {
	if UnitsMetric.Toggle() != UnitsImperial || UnitsImperial.Toggle() != UnitsMetric {
		t.Fatal("toggle should flip between metric and imperial")
	}
	if Units("kelvin").Valid() {
		t.Fatal("unknown units should not be valid")
	}
}

func TestNewViewUsesUnits(t *testing.T) {
	res := Result{
		Status:      StatusSuccess,
		LocationID:  "178087",
		DisplayName: "Berlin",
		Weather: &WeatherSnapshot{
			Temperature: Temperature{Value: 20},
			Wind:        Wind{SpeedKmh: 16.1},
		},
		Forecast: []ForecastDay{{MinTemp: 10, MaxTemp: 20}},
	}

	v := NewView(res, UnitsImperial)
	if v.Current == nil || v.Current.Temperature != "68°F" {
		t.Fatalf("expected 68°F, got %+v", v.Current)
	}
	if v.Current.Wind != "10 mph" {
		t.Fatalf("expected 10 mph, got %q", v.Current.Wind)
	}
	if v.Forecast[0].Max != "68°F" || v.Forecast[0].Min != "50°F" {
		t.Fatalf("unexpected forecast view: %+v", v.Forecast[0])
	}
	if v.Current.Raw.Temperature.Value != 20 {
		t.Fatal("stored value must stay metric")
	}

	if NewView(res, "").Units != UnitsMetric {
		t.Fatal("invalid units should render metric")
	}
}
