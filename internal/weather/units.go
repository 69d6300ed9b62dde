package weather

import (
	"fmt"
	"math"
)

// Units is the user's display unit system. Stored values are always metric.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Toggle flips between metric and imperial.
func (u Units) Toggle() Units {
	if u == UnitsImperial {
		return UnitsMetric
	}
	return UnitsImperial
}

// Valid reports whether u is a known unit system.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// CelsiusToFahrenheit converts c using c*9/5+32.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// ConvertTemperature converts a Celsius value into the given units.
func ConvertTemperature(celsius float64, u Units) float64 {
	if u == UnitsImperial {
		return CelsiusToFahrenheit(celsius)
	}
	return celsius
}

// FormatTemperature renders a stored Celsius value for display, rounded to
// a whole degree: "18°C" or "68°F".
func FormatTemperature(celsius float64, u Units) string {
	v := math.Round(ConvertTemperature(celsius, u))
	if u == UnitsImperial {
		return fmt.Sprintf("%d°F", int(v))
	}
	return fmt.Sprintf("%d°C", int(v))
}

// FormatSpeed renders a km/h value as km/h or mph.
func FormatSpeed(kmh float64, u Units) string {
	if u == UnitsImperial {
		return fmt.Sprintf("%d mph", int(math.Round(kmh/1.609344)))
	}
	return fmt.Sprintf("%d km/h", int(math.Round(kmh)))
}
