package memocache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cachence/memocache/backend"
	"github.com/cachence/memocache/coder"
	"github.com/cachence/memocache/logger"
)

// ErrNotConfigured is returned when a cache operation is attempted on a
// nil cache or a cache constructed without a backend.
var ErrNotConfigured = errors.New("memocache: cache is not configured")

// Cache holds the resolved configuration shared by every wrapped call:
// the backend, default coder, default TTL, key builder, global key
// prefix, and the worker pool for blocking computations. Construct one
// with [New] at composition time and pass it to the wrapper factories.
// All methods are safe for concurrent use; the configuration is
// immutable after construction except the enabled flag.
type Cache struct {
	backend backend.Backend
	coder   coder.Coder
	keyb    KeyBuilder
	prefix  string
	ttl     time.Duration
	log     logger.Logger
	pool    *workerPool
	group   *singleflight.Group
	enabled atomic.Bool
}

// New returns a Cache using the given backend. The zero configuration
// uses the JSON coder, [DefaultKeyBuilder], no global prefix, no default
// TTL (entries do not expire), and a silent logger.
func New(b backend.Backend, opts ...Option) (*Cache, error) {
	if b == nil {
		return nil, ErrNotConfigured
	}
	cfg := applyOptions(opts)
	if cfg.err != nil {
		return nil, cfg.err
	}
	c := &Cache{
		backend: b,
		coder:   cfg.coder,
		keyb:    cfg.keyBuilder,
		prefix:  cfg.prefix,
		ttl:     cfg.ttl,
		log:     cfg.log,
		pool:    newWorkerPool(cfg.workers),
	}
	if cfg.singleFlight {
		c.group = new(singleflight.Group)
	}
	c.enabled.Store(!cfg.disabled)
	return c, nil
}

// Backend returns the configured storage backend.
func (c *Cache) Backend() backend.Backend { return c.backend }

// Coder returns the default coder.
func (c *Cache) Coder() coder.Coder { return c.coder }

// KeyBuilder returns the default key builder.
func (c *Cache) KeyBuilder() KeyBuilder { return c.keyb }

// Prefix returns the global key prefix.
func (c *Cache) Prefix() string { return c.prefix }

// TTL returns the default time-to-live for stored entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Enabled reports whether lookups and stores are currently performed.
func (c *Cache) Enabled() bool { return c != nil && c.enabled.Load() }

// SetEnabled toggles the global bypass. When disabled, every wrapped
// call executes its computation directly and nothing is read from or
// written to the backend. Takes effect for subsequent calls; calls
// already in flight are unaffected.
func (c *Cache) SetEnabled(enabled bool) { c.enabled.Store(enabled) }

// fullKey prepends the global prefix to a built key.
func (c *Cache) fullKey(built string) string {
	if c.prefix == "" {
		return built
	}
	return c.prefix + ":" + built
}

// KeyFor returns the full storage key for a call site, including the
// global prefix. Useful with [Cache.ClearKey] and direct Get/Put.
func (c *Cache) KeyFor(namespace, function string, args ...any) (string, error) {
	if c == nil || c.backend == nil {
		return "", ErrNotConfigured
	}
	built, err := c.keyb(namespace, function, args, nil)
	if err != nil {
		return "", err
	}
	return c.fullKey(built), nil
}

// Clear removes every entry under the cache's global prefix and returns
// the count removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	if c == nil || c.backend == nil {
		return 0, ErrNotConfigured
	}
	prefix := ""
	if c.prefix != "" {
		prefix = c.prefix + ":"
	}
	return c.backend.Clear(ctx, prefix, "")
}

// ClearNamespace removes every entry in the namespace, leaving other
// namespaces intact. The global prefix is prepended automatically, so
// callers never deal with the internal key layout.
func (c *Cache) ClearNamespace(ctx context.Context, namespace string) (int, error) {
	if c == nil || c.backend == nil {
		return 0, ErrNotConfigured
	}
	return c.backend.Clear(ctx, c.fullKey(namespace)+":", "")
}

// ClearKey removes exactly one entry by its full storage key, as
// returned by [Cache.KeyFor].
func (c *Cache) ClearKey(ctx context.Context, key string) (int, error) {
	if c == nil || c.backend == nil {
		return 0, ErrNotConfigured
	}
	return c.backend.Clear(ctx, "", key)
}

// Put encodes a value with the default coder and stores it under the
// given full key. A ttl <= 0 falls back to the cache default.
func (c *Cache) Put(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil || c.backend == nil {
		return ErrNotConfigured
	}
	data, err := c.coder.Marshal(v)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.backend.Set(ctx, key, data, ttl)
}

// Get retrieves and decodes a typed value stored under the given full
// key. A miss returns found=false with a nil error.
func Get[T any](ctx context.Context, c *Cache, key string) (bool, T, error) {
	var zero T
	if c == nil || c.backend == nil {
		return false, zero, ErrNotConfigured
	}
	data, found, err := c.backend.Get(ctx, key)
	if err != nil || !found {
		return false, zero, err
	}
	var out T
	if err := c.coder.Unmarshal(data, &out); err != nil {
		return false, zero, err
	}
	return true, out, nil
}

// Close releases the backend's resources.
func (c *Cache) Close(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Close(ctx)
}
