// Package logging builds the process-wide zerolog.Logger root that every
// other component narrows with `.With().Str("component", "...").Logger()`
// (spec SPEC_FULL.md §A.1). Grounded on the teacher's pkg/logger: parse a
// string level, optionally switch to a pretty console writer for local
// development, stamp every line with a timestamp and caller.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the logger's verbosity and output format.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output instead of JSON
}

// New returns a root logger per cfg. Unlike the teacher's pkg/logger, this
// never touches zerolog's package-level global logger (SPEC_FULL.md §A.1:
// "No component uses the global logger") — callers thread the returned
// value explicitly.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}
