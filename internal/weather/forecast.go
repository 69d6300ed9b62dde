package weather

// ForecastDays is the number of entries in a forecast window.
const ForecastDays = 5

// ForecastWindow turns the provider's raw daily forecast (today first) into
// the displayed window: today is dropped and the remainder padded to
// ForecastDays entries. An empty result stays empty.
func ForecastWindow(raw []ForecastDay) []ForecastDay {
	if len(raw) == 0 {
		return []ForecastDay{}
	}
	return PadForecast(raw[1:])
}

// PadForecast returns exactly ForecastDays entries, oldest first. Missing
// trailing days are clones of the last available day with the date advanced
// by one calendar day per pad. Input longer than the window is truncated and
// empty input yields an empty slice.
func PadForecast(days []ForecastDay) []ForecastDay {
	if len(days) == 0 {
		return []ForecastDay{}
	}

	out := make([]ForecastDay, 0, ForecastDays)
	for i := 0; i < len(days) && i < ForecastDays; i++ {
		out = append(out, days[i])
	}

	last := out[len(out)-1]
	for pad := 1; len(out) < ForecastDays; pad++ {
		clone := last
		clone.Date = last.Date.AddDate(0, 0, pad)
		out = append(out, clone)
	}
	return out
}
