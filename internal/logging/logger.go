// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package logging provides structured logging for all SkyIntel
// components using zerolog. A single shared logger is configured at
// startup from the logging section of the config and used throughout
// the process; packages obtain child loggers with component fields
// rather than constructing their own.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Config controls the behaviour of the shared logger.
type Config struct {
	// Level is the minimum level emitted: trace, debug, info, warn,
	// error, fatal or panic. Defaults to info.
	Level string `koanf:"level"`

	// Format selects the output encoding: "json" for machine
	// consumption or "console" for human-readable development output.
	Format string `koanf:"format"`

	// Caller adds the file:line of the call site to each event.
	Caller bool `koanf:"caller"`

	// Output overrides the destination writer. Nil means stdout.
	Output io.Writer `koanf:"-"`
}

var (
	logger   zerolog.Logger
	loggerMu sync.RWMutex
)

func init() {
	// Sensible defaults before Init runs so early failures still log.
	logger = newLogger(Config{Level: "info", Format: "console"})
}

// Init configures the shared logger. Call once at startup after the
// configuration has been loaded.
func Init(cfg Config) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = newLogger(cfg)
}

func newLogger(cfg Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the shared logger. Use With to derive component
// loggers instead of storing the result.
func Logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// With returns a child logger tagged with a component name.
func With(component string) *zerolog.Logger {
	l := Logger().With().Str("component", component).Logger()
	return &l
}

// Debug starts a debug-level event on the shared logger.
func Debug() *zerolog.Event { l := Logger(); return l.Debug() }

// Info starts an info-level event on the shared logger.
func Info() *zerolog.Event { l := Logger(); return l.Info() }

// Warn starts a warn-level event on the shared logger.
func Warn() *zerolog.Event { l := Logger(); return l.Warn() }

// Error starts an error-level event on the shared logger.
func Error() *zerolog.Event { l := Logger(); return l.Error() }

// Fatal starts a fatal-level event on the shared logger. The event
// terminates the process when sent.
func Fatal() *zerolog.Event { l := Logger(); return l.Fatal() }

// NewTestLogger returns a logger writing to w at debug level, for use
// in tests that assert on log output.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
