package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/dropwishes/api/internal/config"
)

// NewLogger creates the process-wide structured logger. The level comes
// from LOG_LEVEL and falls back to info on unknown values.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "dropwishes-api").
		Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
