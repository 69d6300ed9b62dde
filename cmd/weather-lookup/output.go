package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printView(w io.Writer, v weather.View) error {
	if flagJSON {
		return printJSON(w, v)
	}
	if v.Status == weather.StatusNotFound {
		_, err := fmt.Fprintln(w, "No matching city found.")
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", v.DisplayName, v.LocationID)
	if c := v.Current; c != nil {
		fmt.Fprintf(w, "  %s, %s (feels like %s)\n", c.Description, c.Temperature, c.FeelsLike)
		fmt.Fprintf(w, "  Humidity %d%%  Wind %s %s  Pressure %.0f mb  UV %d  Clouds %d%%\n",
			c.Humidity, c.Wind, c.WindDir, c.PressureMb, c.UVIndex, c.CloudCover)
		if c.HasPrecipitation {
			fmt.Fprintf(w, "  Precipitation: %s\n", c.PrecipitationType)
		}
	}
	for _, d := range v.Forecast {
		fmt.Fprintf(w, "  %s  %s / %s  %s\n", d.Date, d.Min, d.Max, d.DayDescription)
	}
	return nil
}

func printTiles(w io.Writer, tiles []weather.FavoriteWeather, units weather.Units) error {
	if flagJSON {
		return printJSON(w, tiles)
	}
	if len(tiles) == 0 {
		_, err := fmt.Fprintln(w, "No favorite cities.")
		return err
	}
	for _, t := range tiles {
		if t.Weather == nil {
			fmt.Fprintf(w, "%-24s  unavailable\n", t.DisplayName)
			continue
		}
		fmt.Fprintf(w, "%-24s  %s  %s\n", t.DisplayName,
			weather.FormatTemperature(t.Weather.Temperature.Value, units), t.Weather.Description)
	}
	return nil
}
