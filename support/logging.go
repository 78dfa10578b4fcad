package support

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger builds the service logger at the configured level.
func Logger(cfg Config) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Logger()

	return &logger
}
