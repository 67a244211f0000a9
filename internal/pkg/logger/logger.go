// Package logger provides the structured logger behind ports.Logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // console output for development
	Output io.Writer
}

// ZeroLogger is a ports.Logger implementation backed by zerolog.
type ZeroLogger struct {
	zlog zerolog.Logger
}

// New creates a ZeroLogger.
func New(cfg Config) *ZeroLogger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "logbot").
		Logger()

	return &ZeroLogger{zlog: zlog}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZeroLogger {
	return &ZeroLogger{zlog: zerolog.Nop()}
}

// ParseLevel maps a config string to a zerolog level. Unknown values mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a child logger tagged with a component name.
func (l *ZeroLogger) With(component string) *ZeroLogger {
	return &ZeroLogger{zlog: l.zlog.With().Str("component", component).Logger()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zlog.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zlog.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zlog.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.zlog.Error().Err(err).Fields(fields).Msg(msg)
}
