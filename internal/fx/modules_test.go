package fx

import (
	"testing"

	"fixture-tracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestProvideLoggerAppliesConfiguredLevel(t *testing.T) {
	log := ProvideLogger(&config.Config{LogLevel: "debug"})
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestProvideLoggerFallsBackToInfo(t *testing.T) {
	for _, level := range []string{"", "verbose", "nope"} {
		log := ProvideLogger(&config.Config{LogLevel: level})
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel(), "level=%q", level)
	}
}
