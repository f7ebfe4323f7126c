// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/api"
	"github.com/andresuchdata/shelfwatch/internal/cache"
	"github.com/andresuchdata/shelfwatch/internal/config"
	"github.com/andresuchdata/shelfwatch/internal/pipeline"
	"github.com/andresuchdata/shelfwatch/internal/repository"
	"github.com/andresuchdata/shelfwatch/internal/service"
	"github.com/andresuchdata/shelfwatch/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		logger.UseJSON()
		gin.SetMode(gin.ReleaseMode)
	}

	// Snapshot source
	source, closeSource, err := repository.OpenSource(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("source", cfg.Source.Kind).Msg("Failed to open snapshot source")
	}
	defer closeSource()

	snapshotCache, err := cache.NewSnapshotCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Snapshot cache unavailable, continuing without it")
		snapshotCache = cache.NewNoopSnapshotCache()
	}

	// Initialize services
	worker := pipeline.NewWorker(pipeline.Config{WorkerCount: cfg.Pipeline.WorkerCount})
	replenishmentService := service.NewReplenishmentService(source, snapshotCache, worker)

	router := api.NewRouter(&api.Services{
		ReplenishmentService: replenishmentService,
		DefaultPolicy:        cfg.Policy,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("source", source.Name()).
			Float64("risk_threshold", cfg.Policy.RiskThreshold).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
