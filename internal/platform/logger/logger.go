// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a zerolog.Logger for serviceName writing to w at level.
// FormatConsole renders human-readable lines; anything else writes JSON.
func New(serviceName string, w io.Writer, level zerolog.Level, format string) zerolog.Logger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
