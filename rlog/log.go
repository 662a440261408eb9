// Package rlog is the logging collaborator used throughout this module: a
// thin facade over zerolog that mirrors the shape of the original source's
// hand-rolled logging facility (a named Log handle with Vital/Log methods)
// without reimplementing its channel/merger/writer plumbing.
package rlog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	baseOnce   sync.Once
	baseLogger zerolog.Logger
)

func base() zerolog.Logger {
	baseOnce.Do(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		baseLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: false}).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
	return baseLogger
}

// SetOutput redirects all subsequently created Logs to w. Tests use this to
// capture output instead of writing to stdout.
func SetOutput(w io.Writer) {
	baseOnce.Do(func() {}) // mark the default as built so a later base() call keeps w
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	baseLogger = zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Log is a named logging handle, the Go analogue of the original's
// thread-affine Logger.log(name). A *Log is typically created once per
// goroutine (one per staff member, one for the demo's main goroutine) and
// threaded down through step functions.
type Log struct {
	zl zerolog.Logger
}

// New creates a named sub-logger. name becomes a structured "channel"
// field on every line the returned Log emits.
func New(name string) *Log {
	return &Log{zl: base().With().Str("channel", name).Logger()}
}

// Vital records a message that must always be surfaced - worker status
// lines, counter dumps, invariant-violation diagnostics immediately before
// a panic. It maps to zerolog's Info level with a vital marker field.
func (l *Log) Vital(msg string) {
	l.zl.Info().Bool("vital", true).Msg(msg)
}

// Log records a message at debug verbosity, suppressed by default level
// filtering. It exists for call sites that want to mirror the original's
// unconditional `log(message)` call without promoting every such line to
// Vital.
func (l *Log) Log(msg string) {
	l.zl.Debug().Msg(msg)
}

// Vitalf and Logf are convenience wrappers following zerolog's Msgf
// pattern, used by call sites that build a message from counters.
func (l *Log) Vitalf(format string, args ...interface{}) {
	l.zl.Info().Bool("vital", true).Msgf(format, args...)
}

func (l *Log) Logf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}
