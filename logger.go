package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// For log management, use journalctl commands:
//   - View logs: journalctl -u channel-gate-bot
//   - Follow logs: journalctl -u channel-gate-bot -f
//   - View errors: journalctl -u channel-gate-bot -p err

// Loggers for informational and error messages. They are usable before
// initLoggers runs so that tests and early startup never hit a nil writer.
var (
	InfoLogger  = zerolog.New(os.Stdout).With().Timestamp().Logger()
	ErrorLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// initLoggers sets up separate loggers for stdout and stderr.
// An unknown level falls back to info.
func initLoggers(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	// InfoLogger writes to stdout at the configured level.
	InfoLogger = zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Caller().Logger()

	// ErrorLogger writes to stderr and only carries warnings and errors.
	ErrorLogger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Caller().Logger()
}
