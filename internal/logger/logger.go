// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// serviceName is stamped on every log line so aggregated streams can be
// filtered down to this service.
const serviceName = "plate-service"

// Init configures the global logger. level accepts zerolog's level names
// (trace, debug, info, warn, error, fatal); anything unrecognized falls
// back to info. When pretty is set, output switches to a human-readable
// console writer for local development.
func Init(level string, pretty bool) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	// Optimization runs span milliseconds to minutes; millisecond duration
	// fields stay readable across that whole range.
	zerolog.DurationFieldUnit = time.Millisecond

	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger returns the global logger instance.
func Logger() zerolog.Logger {
	return log.Logger
}

// ForComponent returns the global logger tagged with a component name,
// for subsystems that log outside a request scope (jobs, optimizer,
// repository).
func ForComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
