// Package logging provides structured logging for shotcut on top of zerolog.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with a console writer on stderr.
func Init(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	zerolog.SetGlobalLevel(levelFor(verbose))

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// NewLogger creates a new logger with optional writers.
func NewLogger(writers ...io.Writer) zerolog.Logger {
	if len(writers) == 0 {
		return log.Logger
	}

	if len(writers) == 1 {
		return zerolog.New(writers[0]).With().Timestamp().Logger()
	}

	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).With().Timestamp().Logger()
}

// WithComponent creates a logger from the global one with a component field.
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// Component tags an existing logger with a component field.
func Component(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

func levelFor(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
