package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Show the weather of a city",
	Long:  `Search a city by name and show its current conditions and 5-day forecast.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var coordsCmd = &cobra.Command{
	Use:   "coords <lat> <lon>",
	Short: "Show the weather at a position",
	Args:  cobra.ExactArgs(2),
	RunE:  runCoords,
}

var hereCmd = &cobra.Command{
	Use:   "here",
	Short: "Show the weather at the current position",
	Long: `Show the weather at the configured position. When no position is available
the first favorite, the last viewed city or DEFAULT_CITY is used instead.`,
	Args: cobra.NoArgs,
	RunE: runHere,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(coordsCmd)
	rootCmd.AddCommand(hereCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	q := weather.Query{City: strings.Join(args, " "), Lang: app.lang()}
	return runQuery(cmd, app, q)
}

func runCoords(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}

	q := weather.Query{Coords: &weather.Coordinates{Lat: lat, Lon: lon}, Lang: app.lang()}
	return runQuery(cmd, app, q)
}

func runHere(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	res, err := app.service.Here(cmd.Context(), app.lang())
	if err != nil {
		return fmt.Errorf("weather here: %w", err)
	}
	if res.Status == weather.StatusSuccess {
		if _, err := app.favorites.RecordLastViewed(res.LocationID, res.DisplayName); err != nil {
			app.logger.Warn("failed to record last viewed city", zap.Error(err))
		}
	}
	return printView(cmd.OutOrStdout(), weather.NewView(res, app.preferences.Units()))
}

// runQuery goes through the search slot so a successful lookup is recorded
// as the last viewed city.
func runQuery(cmd *cobra.Command, app *application, q weather.Query) error {
	st := app.slot.Run(cmd.Context(), q)
	if st.Err != nil {
		return fmt.Errorf("weather lookup: %w", st.Err)
	}
	return printView(cmd.OutOrStdout(), weather.NewView(st.Result, app.preferences.Units()))
}
