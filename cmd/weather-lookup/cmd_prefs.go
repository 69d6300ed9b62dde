package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Display preference commands",
	Long:  `Commands for showing and changing units, theme and language.`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsShow,
}

var prefsUnitsCmd = &cobra.Command{
	Use:       "units [metric|imperial]",
	Short:     "Set the units, or toggle them without an argument",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(weather.UnitsMetric), string(weather.UnitsImperial)},
	RunE:      runPrefsUnits,
}

var prefsThemeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Set the theme, or toggle it without an argument",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(store.ThemeLight), string(store.ThemeDark)},
	RunE:      runPrefsTheme,
}

var prefsLangCmd = &cobra.Command{
	Use:   "lang <tag>",
	Short: "Set the language used for provider text",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsLang,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsUnitsCmd)
	prefsCmd.AddCommand(prefsThemeCmd)
	prefsCmd.AddCommand(prefsLangCmd)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	return printPrefs(cmd, appFrom(cmd).preferences.Get())
}

func runPrefsUnits(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	var err error
	if len(args) == 0 {
		_, err = app.preferences.ToggleUnits()
	} else {
		err = app.preferences.SetUnits(weather.Units(args[0]))
	}
	if err != nil {
		return err
	}
	return printPrefs(cmd, app.preferences.Get())
}

func runPrefsTheme(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	var err error
	if len(args) == 0 {
		_, err = app.preferences.ToggleTheme()
	} else {
		err = app.preferences.SetTheme(store.Theme(args[0]))
	}
	if err != nil {
		return err
	}
	return printPrefs(cmd, app.preferences.Get())
}

func runPrefsLang(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	if _, err := app.preferences.SetLanguage(args[0]); err != nil {
		return err
	}
	return printPrefs(cmd, app.preferences.Get())
}

func printPrefs(cmd *cobra.Command, p store.Preferences) error {
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "units:    %s\ntheme:    %s\nlanguage: %s\n", p.Units, p.Theme, p.Language)
	return nil
}
