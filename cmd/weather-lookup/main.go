package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/config"
)

type appKey struct{}

var (
	flagLang string
	flagJSON bool

	// active is closed by main whether or not the command failed.
	active *application
)

var rootCmd = &cobra.Command{
	Use:   "weather-lookup",
	Short: "Weather Lookup - current conditions and 5-day forecasts",
	Long: `Weather Lookup searches a city or position, shows its current conditions
and a 5-day forecast, and keeps favorite cities and display preferences.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		app, err := newApplication(cfg)
		if err != nil {
			return err
		}
		active = app
		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "language tag for provider text (defaults to the stored preference)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON instead of text")
}

func appFrom(cmd *cobra.Command) *application {
	return cmd.Context().Value(appKey{}).(*application)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if active != nil {
		active.close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
