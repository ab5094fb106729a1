package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := db.Migrate(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to access database handle")
	}

	images, err := storage.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	pageCache := cache.New(cfg.PageCacheTTL, time.Minute)
	defer pageCache.Close()

	e, err := router.New(cfg, router.Dependencies{
		Repos:     repositories.NewPostgres(db.Postgres),
		Images:    images,
		PageCache: pageCache,
		DB:        sqlDB,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build router")
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
