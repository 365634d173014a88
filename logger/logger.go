// Package logger provides the minimal leveled logging surface used by
// memocache, with console and test implementations.
package logger

import (
	"os"
	"strings"
)

// LogLevel defines the level of logging.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// GetLevelFromEnv reads MEMOCACHE_LOG_LEVEL and converts it into the
// matching LogLevel, defaulting to LevelWarn.
func GetLevelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("MEMOCACHE_LOG_LEVEL")) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "none":
		return LevelNone
	default:
		return LevelWarn
	}
}

// Logger is the logging interface consumed by the cache. Messages use
// fmt-style formatting.
type Logger interface {
	// With returns a new logger using metadata as the base context.
	With(metadata map[string]any) Logger
	// Trace level logging
	Trace(msg string, args ...any)
	// Debug level logging
	Debug(msg string, args ...any)
	// Info level logging
	Info(msg string, args ...any)
	// Warning level logging
	Warn(msg string, args ...any)
	// Error level logging
	Error(msg string, args ...any)
}

type noopLogger struct{}

var _ Logger = (*noopLogger)(nil)

func (noopLogger) With(map[string]any) Logger { return noopLogger{} }
func (noopLogger) Trace(string, ...any)       {}
func (noopLogger) Debug(string, ...any)       {}
func (noopLogger) Info(string, ...any)        {}
func (noopLogger) Warn(string, ...any)        {}
func (noopLogger) Error(string, ...any)       {}

// NewNoop returns a logger that discards everything. It is the default
// for a cache constructed without an explicit logger.
func NewNoop() Logger { return noopLogger{} }
