// Command api is the Scoracle Simulation API server.
//
// Usage:
//
//	scoracle-api
//	API_PORT=8080 DATA_FILE=data/euro2024.yaml scoracle-api

// @title Scoracle Simulation API
// @version 1.0.0
// @description Monte Carlo simulation of group-and-knockout football tournaments. Returns each team's group position, knockout progress and win probabilities. Reference responses are cached with ETags; simulations are cached when a seed is given.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-sim/internal/api"
	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/db"
	"github.com/albapepper/scoracle-sim/internal/listener"
	"github.com/albapepper/scoracle-sim/internal/maintenance"
	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/sim"

	_ "github.com/albapepper/scoracle-sim/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Reference data
	var (
		pool   *db.Pool
		source refdata.Source = refdata.FileSource{Path: cfg.DataFile}
	)
	if cfg.DataSource == config.DataSourcePostgres {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		source = refdata.PostgresSource{Pool: pool.Pool, Dataset: cfg.Dataset}
	}
	dataset, err := source.Load(ctx)
	if err != nil {
		logger.Error("Failed to load dataset", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	logger.Info("Dataset loaded",
		"name", dataset.Name,
		"teams", len(dataset.Teams),
		"fixtures", len(dataset.Fixtures),
		"results", len(dataset.Results))

	params := predictor.Params{BaseGoals: cfg.BaseGoals, EloScale: cfg.EloScale}
	runner := sim.NewRunner(dataset, sim.PoissonFactory(dataset, params), logger)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Keep a postgres dataset current: LISTEN/NOTIFY plus a catch-up ticker
	if pool != nil {
		reloader := &listener.Reloader{
			Source: source,
			Runner: runner,
			Cache:  appCache,
			Params: params,
			Logger: logger,
		}
		go listener.Start(ctx, cfg.DatabaseURL, cfg.Dataset, reloader, logger)
		go maintenance.Start(ctx, []maintenance.Task{{
			Name:     "reload",
			Interval: cfg.ReloadInterval,
			Run: func(ctx context.Context) error {
				_, err := reloader.Reload(ctx)
				return err
			},
		}}, logger)
	}

	// Create router
	router := api.NewRouter(runner, pool, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // large simulations
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Simulation API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort),
			"mcp", fmt.Sprintf("http://localhost:%d/mcp", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
