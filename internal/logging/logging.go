// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. DEV gets a human readable console writer,
// every other environment logs JSON lines.
func Setup(env, level string) {
	setup(os.Stderr, env, level)
}

func setup(out io.Writer, env, level string) {
	var logger zerolog.Logger
	if env == "DEV" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(out)
	}
	log.Logger = logger.With().Timestamp().Logger()

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
		log.Warn().
			Str("configured_log_level", level).
			Str("fallback_log_level", logLevel.String()).
			Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}
	zerolog.SetGlobalLevel(logLevel)
}
