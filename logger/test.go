package logger

import (
	"fmt"
	"sync"
)

// TestLogEntry is a single captured log call.
type TestLogEntry struct {
	Severity string
	Message  string
}

// TestLogger captures log entries for assertions in tests.
type TestLogger struct {
	mutex    sync.Mutex
	metadata map[string]any
	entries  []TestLogEntry
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a logger that records every call.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Entries returns a copy of the captured entries.
func (c *TestLogger) Entries() []TestLogEntry {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]TestLogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *TestLogger) With(metadata map[string]any) Logger {
	return c
}

func (c *TestLogger) record(severity, msg string, args ...any) {
	c.mutex.Lock()
	c.entries = append(c.entries, TestLogEntry{
		Severity: severity,
		Message:  fmt.Sprintf(msg, args...),
	})
	c.mutex.Unlock()
}

func (c *TestLogger) Trace(msg string, args ...any) { c.record("TRACE", msg, args...) }
func (c *TestLogger) Debug(msg string, args ...any) { c.record("DEBUG", msg, args...) }
func (c *TestLogger) Info(msg string, args ...any)  { c.record("INFO", msg, args...) }
func (c *TestLogger) Warn(msg string, args ...any)  { c.record("WARN", msg, args...) }
func (c *TestLogger) Error(msg string, args ...any) { c.record("ERROR", msg, args...) }
