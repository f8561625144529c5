// Package logging wraps zerolog behind a small key/value interface so the
// loaders and commands never depend on the concrete logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the structured logger used across citypulse.
// Fields are alternating key/value pairs; an "error" key holding an error is
// attached with zerolog's Err.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Config controls where log lines go.
type Config struct {
	Level      string
	Console    bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig logs info and above to stderr only.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Console:    true,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

type zlog struct {
	zl zerolog.Logger
}

// New builds a Logger from cfg. Console output goes to stderr so command
// output on stdout stays machine-readable.
func New(cfg Config) Logger {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}
	if len(writers) == 0 {
		return Nop()
	}
	return NewWriter(io.MultiWriter(writers...), ParseLevel(cfg.Level))
}

// NewWriter logs JSON lines to w at the given level.
func NewWriter(w io.Writer, level zerolog.Level) Logger {
	return &zlog{zl: zerolog.New(w).With().Timestamp().Logger().Level(level)}
}

// Nop discards everything.
func Nop() Logger {
	return &zlog{zl: zerolog.Nop()}
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zlog) Debug(msg string, fields ...any) { withFields(l.zl.Debug(), fields).Msg(msg) }
func (l *zlog) Info(msg string, fields ...any)  { withFields(l.zl.Info(), fields).Msg(msg) }
func (l *zlog) Warn(msg string, fields ...any)  { withFields(l.zl.Warn(), fields).Msg(msg) }
func (l *zlog) Error(msg string, fields ...any) { withFields(l.zl.Error(), fields).Msg(msg) }

func withFields(ev *zerolog.Event, fields []any) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr && key == "error" {
			ev = ev.Err(err)
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	return ev
}
