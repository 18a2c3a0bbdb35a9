// Package logging holds the process logger for searchsweep, sweep progress
// tracking, and builders for completion events.
package logging

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger     atomic.Pointer[zerolog.Logger]
	prettyMode atomic.Bool
)

func init() {
	// JSON at info level until Init runs.
	SetLogger(newLogger(os.Stderr, false))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func newLogger(w io.Writer, human bool) zerolog.Logger {
	if human {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Init configures the global logger to write to stderr.
// debug lowers the level to Debug. human switches to a console writer and
// adds human-readable companions (the *_h fields) to completion events.
func Init(debug bool, human bool) {
	InitWriter(os.Stderr, debug, human)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, debug bool, human bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	SetPrettyMode(human)
	SetLogger(newLogger(w, human))
}

// L returns the base logger.
func L() *zerolog.Logger {
	return logger.Load()
}

// SetLogger replaces the global logger.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// SetPrettyMode toggles human-readable companion fields.
func SetPrettyMode(on bool) {
	prettyMode.Store(on)
}

// IsPrettyMode reports whether human-readable companion fields are emitted.
func IsPrettyMode() bool {
	return prettyMode.Load()
}
