package fx

import (
	"fixture-tracker/internal/api"
	"fixture-tracker/internal/cache"
	"fixture-tracker/internal/config"
	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/database"
	"fixture-tracker/internal/ingest"
	"fixture-tracker/internal/logger"
	"fixture-tracker/internal/ratelimit"
	"fixture-tracker/internal/server"
	"fixture-tracker/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideLogger builds the application logger at the configured level,
// falling back to info when LOG_LEVEL is unparsable.
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.SetLevel(level)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.CallsPerMinute, constants.RateLimitWindow)
}

func ProvideFixtureStore(repo *store.FixtureRepository) store.FixtureStore {
	return repo
}

func ProvideFetcher(client *api.Client) ingest.Fetcher {
	return client
}

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(ProvideLogger),
	fx.Provide(database.New),
	// storage
	fx.Provide(store.NewFixtureRepository),
	fx.Provide(ProvideFixtureStore),
	// api client
	fx.Provide(cache.New),
	fx.Provide(ProvideLimiter),
	fx.Provide(api.NewClient),
	fx.Provide(ProvideFetcher),
	// pipeline
	fx.Provide(ingest.NewPipeline),
	fx.Provide(ingest.NewCollector),
	// server
	fx.Provide(server.NewTrackerServer),
)
