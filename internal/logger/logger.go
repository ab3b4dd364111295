// Package logger provides the structured logger shared by the analysis
// pipeline and the command line.
package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type (
	// Level names a minimum log level.
	Level string

	// Logger is the structured logging surface used across packages.
	Logger interface {
		Debug(msg string, keyvals ...any)
		Info(msg string, keyvals ...any)
		Warn(msg string, keyvals ...any)
		Error(msg string, keyvals ...any)
		With(keyvals ...any) Logger
	}

	charmLogger struct {
		l *charmlog.Logger
	}
)

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// ParseLevel maps a config string to a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case DebugLevel:
		return DebugLevel
	case WarnLevel:
		return WarnLevel
	case ErrorLevel:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l Level) charm() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Config configures a Logger.
type Config struct {
	Level      Level
	Output     io.Writer
	JSON       bool
	TimeFormat string
}

// DefaultConfig logs info and above as text to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

// New creates a Logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: cfg.TimeFormat != "",
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.charm(),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return &charmLogger{l: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &charmLogger{l: charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})}
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}
