package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Favorite city commands",
	Long:    `Commands for managing favorite cities.`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite cities",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <city>",
	Short: "Add a city to the favorites",
	Long: `Add a city to the favorites. The city is searched by name, or taken
verbatim with --id, in which case the arguments are its display name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <locationId>",
	Short: "Remove a city from the favorites",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesRemove,
}

var favoritesWeatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the current conditions of every favorite",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesWeather,
}

var flagFavoriteID string

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesWeatherCmd)

	favoritesAddCmd.Flags().StringVar(&flagFavoriteID, "id", "", "provider location id")
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	favs := app.favorites.List()
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), favs)
	}
	if len(favs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No favorite cities.")
		return nil
	}
	for _, f := range favs {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s  %s\n", f.LocationID, f.FallbackName)
	}
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	name := strings.Join(args, " ")

	id := strings.TrimSpace(flagFavoriteID)
	if id == "" {
		res, err := app.service.Lookup(cmd.Context(), weather.Query{City: name, Lang: app.lang()})
		if err != nil {
			return fmt.Errorf("failed to find %q: %w", name, err)
		}
		if res.Status != weather.StatusSuccess {
			return fmt.Errorf("no city matches %q", name)
		}
		id, name = res.LocationID, res.DisplayName
	}

	added, err := app.favorites.Add(id, name)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to favorites.\n", name, id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is already a favorite.\n", name, id)
	}
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	removed, err := app.favorites.Remove(args[0])
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if removed {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites.\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not a favorite.\n", args[0])
	}
	return nil
}

func runFavoritesWeather(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	tiles := app.service.FavoritesWeather(cmd.Context(), app.favorites.List(), app.lang())
	return printTiles(cmd.OutOrStdout(), tiles, app.preferences.Units())
}
