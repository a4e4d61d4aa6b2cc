// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Command server runs the GoodWatch discovery and recommendation API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/api"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/database"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/discover"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/logging"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/recommend"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/vector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("vector_url", cfg.Vector.URL).
		Msg("Starting GoodWatch")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	index := vector.NewClient(&cfg.Vector, logging.Logger())
	genres := discover.StaticGenreResolver{}

	engine := discover.NewEngine(db, index, cfg.Discover, cfg.Vector, logging.Logger())
	scorer := recommend.NewScorer(db, index, cfg.Scoring, cfg.Vector, cfg.Discover.PageSize, logging.Logger())
	aggregator := recommend.NewAggregator(db, cfg.Scoring, logging.Logger())

	handler := api.NewHandler(engine, scorer, aggregator, db, genres, cfg, func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.Ping(pingCtx)
	})
	router := api.NewRouter(handler, api.NewMiddleware(cfg.Server))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
