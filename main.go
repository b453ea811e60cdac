package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nemopss/carbon-tracker/backend/analytics"
	"github.com/nemopss/carbon-tracker/backend/api"
	"github.com/nemopss/carbon-tracker/backend/config"
	"github.com/nemopss/carbon-tracker/backend/db"
	_ "github.com/nemopss/carbon-tracker/backend/docs"
	"github.com/nemopss/carbon-tracker/backend/logger"
)

// @title Carbon Tracker API
// @version 1.0
// @description Records spending transactions and reports their estimated carbon footprint.
// @BasePath /
// @SecurityDefinitions.apikey ApiKeyAuth
// @In header
// @Name Authorization
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	storage, err := openStorage(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer storage.Close()

	service := analytics.NewService(storage,
		analytics.WithLocation(cfg.Location()),
		analytics.WithLogger(log.With().Str("component", "analytics").Logger()),
	)
	handler := api.NewHandler(storage, service, cfg.JWTSecret, cfg.JWTTTL, log)

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("timezone", cfg.Timezone).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

type store interface {
	api.Store
	Close()
}

// openStorage connects to Postgres, or keeps everything in memory when no
// POSTGRES_URL is configured.
func openStorage(cfg *config.Config, log zerolog.Logger) (store, error) {
	if cfg.PostgresURL == "" {
		log.Warn().Msg("POSTGRES_URL not set - using in-memory storage, data is lost on restart")
		return db.NewMemoryStorage(), nil
	}
	s, err := db.NewStorage(cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Connected to PostgreSQL")
	return s, nil
}
