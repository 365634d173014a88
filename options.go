package memocache

import (
	"fmt"
	"os"
	"strconv"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/cachence/memocache/coder"
	"github.com/cachence/memocache/logger"
)

// config holds the resolved construction-time configuration.
type config struct {
	prefix       string
	ttl          time.Duration
	coder        coder.Coder
	keyBuilder   KeyBuilder
	log          logger.Logger
	workers      int
	disabled     bool
	singleFlight bool
	err          error
}

// Option configures a Cache at construction time.
type Option func(*config)

func defaultOptions() config {
	return config{
		coder:      coder.NewJSON(),
		keyBuilder: DefaultKeyBuilder,
		log:        logger.NewNoop(),
		workers:    DefaultWorkers,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPrefix sets the global key prefix prepended to every cache key,
// isolating this cache's keyspace on shared storage.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// WithTTL sets the default time-to-live for stored entries. Zero means
// entries never expire. Call sites can override with [Expire].
func WithTTL(d time.Duration) Option {
	return func(c *config) { c.ttl = d }
}

// WithCoder sets the default coder. Call sites can override with
// [WithCallCoder].
func WithCoder(cd coder.Coder) Option {
	return func(c *config) { c.coder = cd }
}

// WithKeyBuilder replaces [DefaultKeyBuilder]. Custom builders must be
// deterministic over (namespace, function, arguments).
func WithKeyBuilder(kb KeyBuilder) Option {
	return func(c *config) { c.keyBuilder = kb }
}

// WithLogger sets the logger used to report non-fatal failures such as
// store errors after a successful computation.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithWorkers bounds the worker pool used for blocking computations.
// Defaults to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithDisabled constructs the cache with the bypass engaged; every call
// computes directly until SetEnabled(true).
func WithDisabled() Option {
	return func(c *config) { c.disabled = true }
}

// WithSingleFlight deduplicates concurrent misses per key: only one
// computation runs and its result is shared with the other waiters. The
// default leaves this off, so two concurrent misses both compute and the
// last write wins.
func WithSingleFlight() Option {
	return func(c *config) { c.singleFlight = true }
}

// FromEnv reads configuration from the environment:
//
//	MEMOCACHE_PREFIX    global key prefix
//	MEMOCACHE_TTL       default TTL, e.g. "90s", "5m", "1h30m"
//	MEMOCACHE_DISABLED  "1" or "true" engages the bypass
//
// A malformed value surfaces as an error from [New].
func FromEnv() Option {
	return func(c *config) {
		if v := os.Getenv("MEMOCACHE_PREFIX"); v != "" {
			c.prefix = v
		}
		if v := os.Getenv("MEMOCACHE_TTL"); v != "" {
			d, err := str2duration.ParseDuration(v)
			if err != nil {
				c.err = fmt.Errorf("memocache: invalid MEMOCACHE_TTL %q: %w", v, err)
				return
			}
			c.ttl = d
		}
		if v := os.Getenv("MEMOCACHE_DISABLED"); v != "" {
			disabled, err := strconv.ParseBool(v)
			if err != nil {
				c.err = fmt.Errorf("memocache: invalid MEMOCACHE_DISABLED %q: %w", v, err)
				return
			}
			c.disabled = disabled
		}
	}
}
