package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/advaitm/stockpilot/internal/api"
	"github.com/advaitm/stockpilot/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                                - Health check
  GET  /api/recommendations                   - Active recommendations (?tier=)
  GET  /api/recommendations/sold              - Recently sold (?days=)
  GET  /api/recommendations/{id}/performance  - Performance samples
  GET  /api/watchlist                         - Watchlist entries
  GET  /api/summaries                         - Weekly summaries
  POST /api/cycles/{cadence}                  - Trigger a cycle

Example:
  go run ./cmd/stockpilot api
  go run ./cmd/stockpilot api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (defaults to PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockpilot API Server ===")

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	router := api.NewRouter(
		handlers.NewRecommendationHandler(d.recs, d.perf, d.log),
		handlers.NewWatchlistHandler(d.watch, d.log),
		handlers.NewSummaryHandler(d.summaries, d.log),
		handlers.NewCycleHandler(d.orch, d.log),
		d.log,
	)

	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
