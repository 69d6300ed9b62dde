package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP gateway",
	Long: `Start the HTTP gateway on the loopback interface. It holds the provider
API key and exposes the weather, favorites and preference operations as JSON.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	log := app.logger

	// Background jobs: cache purge and favorites warm-up.
	sched := scheduler.New(scheduler.Config{
		CachePurge:       app.cfg.CachePurgeInterval,
		FavoritesRefresh: app.cfg.FavoritesRefresh,
	}, app.service, app.cache, app.favorites, app.lang, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	server := httpapi.NewApp(log.Named("http"), true)
	httpapi.RegisterRoutes(server, httpapi.Deps{
		Service:     app.service,
		Slot:        app.slot,
		Favorites:   app.favorites,
		Preferences: app.preferences,
		Logger:      log.Named("http"),
	})

	addr := app.cfg.Addr()
	go func() {
		log.Info("gateway listening", zap.String("addr", addr))
		if err := server.Listen(addr); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	return nil
}
