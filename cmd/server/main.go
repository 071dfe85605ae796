package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"fixture-tracker/internal/config"
	"fixture-tracker/internal/constants"
	fxmodules "fixture-tracker/internal/fx"
	"fixture-tracker/internal/middleware"
	"fixture-tracker/internal/server"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	trackerServer *server.TrackerServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/collect", trackerServer.HandleCollect)
	mux.HandleFunc("/api/status", trackerServer.HandleStatus)
	mux.HandleFunc("/api/next-fixtures", trackerServer.HandleNextFixtures)
	mux.HandleFunc("/api/standings", trackerServer.HandleStandings)
	mux.HandleFunc("/api/report", trackerServer.HandleReport)
	mux.HandleFunc("/api/countries", trackerServer.HandleCountries)
	mux.HandleFunc("/api/leagues", trackerServer.HandleLeagues)
	mux.HandleFunc("/api/seasons", trackerServer.HandleSeasons)
	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(c.Handler(mux))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
