package memocache

import (
	"context"
	"fmt"
	"time"

	"github.com/cachence/memocache/coder"
)

// Call identifies a memoized call site: the qualified function identity
// plus the arguments that distinguish one invocation from another.
// Positional args are digested in order; named args are digested
// order-independently.
type Call struct {
	Function string
	Args     []any
	Named    map[string]any
}

// callConfig holds per-call-site overrides of the cache defaults.
type callConfig struct {
	namespace string
	ttl       time.Duration
	ttlSet    bool
	coder     coder.Coder
	keyb      KeyBuilder
}

// CallOption overrides a cache default for one call site.
type CallOption func(*callConfig)

// Namespace scopes the call site's keys under a namespace, enabling
// [Cache.ClearNamespace] to invalidate them as a group.
func Namespace(ns string) CallOption {
	return func(c *callConfig) { c.namespace = ns }
}

// Expire overrides the cache's default TTL for this call site.
func Expire(d time.Duration) CallOption {
	return func(c *callConfig) {
		c.ttl = d
		c.ttlSet = true
	}
}

// WithCallCoder overrides the cache's default coder for this call site.
func WithCallCoder(cd coder.Coder) CallOption {
	return func(c *callConfig) { c.coder = cd }
}

// WithCallKeyBuilder overrides the cache's key builder for this call site.
func WithCallKeyBuilder(kb KeyBuilder) CallOption {
	return func(c *callConfig) { c.keyb = kb }
}

type skipKey struct{}

// Skip marks the context so wrapped calls bypass the cache entirely:
// the computation runs directly, nothing is read or written.
func Skip(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipKey{}, true)
}

func skipped(ctx context.Context) bool {
	v, _ := ctx.Value(skipKey{}).(bool)
	return v
}

// Do memoizes a single computation. It looks the call up in the cache
// and, on a hit, decodes and returns the stored result without running
// compute. On a miss, compute runs, its result is encoded and stored,
// and the result is returned. The call bypasses the cache when it is
// disabled or the context carries [Skip].
//
// Error behavior: read-path backend errors and decode errors propagate
// to the caller — a decode failure signals a coder or schema mismatch
// and is never retried as a miss. Errors from compute propagate
// unchanged and nothing is stored. A store failure after a successful
// computation is logged and does not fail the call.
func Do[T any](ctx context.Context, c *Cache, call Call, compute func(context.Context) (T, error), opts ...CallOption) (T, error) {
	var zero T
	if c == nil || c.backend == nil {
		return zero, ErrNotConfigured
	}
	if !c.Enabled() || skipped(ctx) {
		return compute(ctx)
	}

	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	kb := cfg.keyb
	if kb == nil {
		kb = c.keyb
	}
	built, err := kb(cfg.namespace, call.Function, call.Args, call.Named)
	if err != nil {
		return zero, err
	}
	key := c.fullKey(built)

	if c.group != nil {
		v, err, _ := c.group.Do(key, func() (any, error) {
			out, err := fetch(ctx, c, cfg, key, compute)
			return out, err
		})
		if err != nil {
			return zero, err
		}
		out, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("memocache: unexpected cached type %T for %s", v, key)
		}
		return out, nil
	}
	return fetch(ctx, c, cfg, key, compute)
}

// fetch runs the lookup/compute/store sequence for a resolved key.
func fetch[T any](ctx context.Context, c *Cache, cfg callConfig, key string, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	cd := cfg.coder
	if cd == nil {
		cd = c.coder
	}

	data, found, err := c.backend.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if found {
		var out T
		if err := cd.Unmarshal(data, &out); err != nil {
			return zero, err
		}
		return out, nil
	}

	out, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	data, err = cd.Marshal(out)
	if err != nil {
		return zero, err
	}
	// The caller may be gone; do not store a result nobody waits for.
	if ctx.Err() != nil {
		return zero, ctx.Err()
	}
	ttl := c.ttl
	if cfg.ttlSet {
		ttl = cfg.ttl
	}
	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		c.log.Error("failed to store result for %s: %v", key, err)
	}
	return out, nil
}

// Wrap0 returns a memoized version of a zero-argument computation.
func Wrap0[R any](c *Cache, function string, fn func(context.Context) (R, error), opts ...CallOption) func(context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		return Do(ctx, c, Call{Function: function}, fn, opts...)
	}
}

// Wrap returns a memoized version of a one-argument computation. The
// argument participates in the cache key and must be serializable by the
// key builder.
func Wrap[A, R any](c *Cache, function string, fn func(context.Context, A) (R, error), opts ...CallOption) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		return Do(ctx, c, Call{Function: function, Args: []any{arg}}, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		}, opts...)
	}
}

// Wrap2 returns a memoized version of a two-argument computation.
func Wrap2[A, B, R any](c *Cache, function string, fn func(context.Context, A, B) (R, error), opts ...CallOption) func(context.Context, A, B) (R, error) {
	return func(ctx context.Context, a A, b B) (R, error) {
		return Do(ctx, c, Call{Function: function, Args: []any{a, b}}, func(ctx context.Context) (R, error) {
			return fn(ctx, a, b)
		}, opts...)
	}
}

// WrapBlocking0 memoizes a zero-argument blocking computation. On a miss
// the function runs on the cache's bounded worker pool while the caller
// waits with context cancellation; the result or error is propagated
// exactly as if it had been called directly.
func WrapBlocking0[R any](c *Cache, function string, fn func() (R, error), opts ...CallOption) func(context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		return Do(ctx, c, Call{Function: function}, func(ctx context.Context) (R, error) {
			return submit(ctx, c.pool, fn)
		}, opts...)
	}
}

// WrapBlocking memoizes a one-argument blocking computation on the
// worker pool.
func WrapBlocking[A, R any](c *Cache, function string, fn func(A) (R, error), opts ...CallOption) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		return Do(ctx, c, Call{Function: function, Args: []any{arg}}, func(ctx context.Context) (R, error) {
			return submit(ctx, c.pool, func() (R, error) { return fn(arg) })
		}, opts...)
	}
}

// WrapBlocking2 memoizes a two-argument blocking computation on the
// worker pool.
func WrapBlocking2[A, B, R any](c *Cache, function string, fn func(A, B) (R, error), opts ...CallOption) func(context.Context, A, B) (R, error) {
	return func(ctx context.Context, a A, b B) (R, error) {
		return Do(ctx, c, Call{Function: function, Args: []any{a, b}}, func(ctx context.Context) (R, error) {
			return submit(ctx, c.pool, func() (R, error) { return fn(a, b) })
		}, opts...)
	}
}
