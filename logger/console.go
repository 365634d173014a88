package logger

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()))

const (
	reset  = "\033[0m"
	gray   = "\033[1;90m"
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

type consoleLogger struct {
	level    LogLevel
	metadata map[string]any
}

var _ Logger = (*consoleLogger)(nil)

// NewConsole returns a logger that writes colorized, human-readable
// output to stderr. Color is suppressed when stderr is not a terminal.
func NewConsole(level LogLevel) Logger {
	return &consoleLogger{level: level}
}

func (c *consoleLogger) With(metadata map[string]any) Logger {
	merged := make(map[string]any, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	return &consoleLogger{level: c.level, metadata: merged}
}

func (c *consoleLogger) suffix() string {
	if len(c.metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.metadata))
	for k := range c.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c.metadata[k]))
	}
	return " " + color(gray) + strings.Join(parts, " ") + color(reset)
}

func (c *consoleLogger) log(level LogLevel, label, labelColor, msg string, args ...any) {
	if level < c.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(os.Stderr, "%s%s%s %s[%s]%s %s%s\n",
		color(gray), ts, color(reset),
		color(labelColor), label, color(reset),
		fmt.Sprintf(msg, args...), c.suffix())
}

func (c *consoleLogger) Trace(msg string, args ...any) {
	c.log(LevelTrace, "TRACE", gray, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...any) {
	c.log(LevelDebug, "DEBUG", cyan, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...any) {
	c.log(LevelInfo, "INFO", green, msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...any) {
	c.log(LevelWarn, "WARN", yellow, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...any) {
	c.log(LevelError, "ERROR", red, msg, args...)
}
