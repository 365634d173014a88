// Package backend defines the storage contract used by memocache and
// provides in-memory, Redis, SQLite, and multi-tier implementations.
//
// Implementations are byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set for the same key. Serialization is the
// coder's concern, never the store's.
package backend

import (
	"context"
	"fmt"
	"time"
)

// Backend is a key-value byte store with TTL semantics and prefix-scoped
// clearing. Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// An expired entry is a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL. A ttl <= 0 stores
	// the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Clear removes entries and returns the number removed. A non-empty
	// key removes exactly that key; otherwise a non-empty prefix removes
	// every key beginning with it; with both empty, everything goes.
	Clear(ctx context.Context, prefix, key string) (int, error)

	// Close releases resources held by the store.
	Close(ctx context.Context) error
}

// Error wraps a storage failure with the operation and key involved.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultQueryTimeout is the per-operation timeout applied by I/O-backed
// stores (Redis, SQLite). Prevents indefinite hangs on slow or
// unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a store implementation.
type config struct {
	queryTimeout  time.Duration
	sweepInterval time.Duration
}

// Option configures a Backend implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		queryTimeout:  DefaultQueryTimeout,
		sweepInterval: time.Minute,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed stores.
// Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithSweepInterval sets the interval for background expired entry
// cleanup in the in-memory and SQLite stores. Defaults to 1 minute.
func WithSweepInterval(d time.Duration) Option {
	return func(c *config) { c.sweepInterval = d }
}
