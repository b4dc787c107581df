// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stockplan/internal/api"
	"stockplan/internal/cache"
	"stockplan/internal/config"
	"stockplan/internal/dataset"
	"stockplan/internal/engine"
	"stockplan/internal/forecast"
	"stockplan/internal/pipeline"
	"stockplan/internal/repository/postgres"
	"stockplan/internal/service"
	"stockplan/internal/storage"
	"stockplan/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	policy, err := cfg.Planning.EnginePolicy()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid planning policy")
	}
	calc, err := engine.NewCalculator(policy)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to build calculator")
	}

	provider, err := forecast.New(cfg.Planning.ForecastProvider)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("provider", cfg.Planning.ForecastProvider).Msg("Unknown forecast provider")
	}

	recCache := buildRecommendationCache(cfg.Cache)
	defaults := cfg.Planning.DefaultParams()
	services := &api.Services{Defaults: defaults}

	switch cfg.Planning.DataSource {
	case "postgres":
		// Initialize database
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		components := postgres.NewComponentRepository(db)
		recommendations := postgres.NewRecommendationRepository(db)
		runStore := pipeline.NewRunStore(db.DB)

		planning := service.NewPlanningService(components, provider, calc, recCache, defaults)

		var artifacts storage.ObjectStorage
		if cfg.Storage.Enabled {
			store, err := storage.NewMinioStorage(cfg.Storage)
			if err != nil {
				logger.Log.Warn().Err(err).Msg("Object storage disabled: client init failed")
			} else {
				artifacts = store
			}
		}

		orchestrator := pipeline.NewOrchestrator(components, planning, recommendations, runStore, artifacts, pipeline.Config{
			Workers:   cfg.Pipeline.Workers,
			BatchSize: cfg.Pipeline.BatchSize,
			OutputDir: cfg.App.OutputDir,
		})

		services.Planning = planning
		services.AnalysisRunner = orchestrator
		services.Runs = runStore
		services.Recommendations = recommendations

	default:
		// CSV mode serves recommendations straight from the dataset
		// directory; batch run endpoints need a database and stay off.
		ds, err := dataset.NewLoader().LoadDir(cfg.App.DataDir)
		if err != nil {
			logger.Log.Fatal().Err(err).Str("dir", cfg.App.DataDir).Msg("Failed to load dataset")
		}
		logger.Log.Info().Int("components", ds.Len()).Str("dir", cfg.App.DataDir).Msg("Dataset loaded")

		services.Planning = service.NewPlanningService(ds, provider, calc, recCache, defaults)
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("source", cfg.Planning.DataSource).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func buildRecommendationCache(cfg config.CacheConfig) cache.RecommendationCache {
	c, err := cache.NewRecommendationCache(cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Recommendation cache disabled: falling back to no-op")
		return cache.NewNoopRecommendationCache()
	}
	return c
}
