package config

import (
	"fmt"
	"os"
	"strconv"

	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type Config struct {
	FootballAPIKey string
	BaseURL        string
	DBPath         string
	ServerPort     string
	LogLevel       string
	CallsPerMinute int
}

// Load runs before the configured logger exists, so it logs with a bootstrap
// logger at the default level.
func Load() (*Config, error) {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		FootballAPIKey: getEnv("FOOTBALL_API_KEY", ""),
		BaseURL:        getEnv("BASE_URL", "https://v3.football.api-sports.io"),
		DBPath:         getEnv("DB_PATH", "fixtures.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CallsPerMinute: getEnvInt("API_CALLS_PER_MINUTE", constants.APICallsPerMinute),
	}

	if cfg.FootballAPIKey == "" {
		return nil, fmt.Errorf("FOOTBALL_API_KEY is required")
	}

	log.Info().
		Str("base_url", cfg.BaseURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("calls_per_minute", cfg.CallsPerMinute).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
