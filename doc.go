// Package memocache memoizes computation results keyed by function
// identity and arguments, with pluggable serialization and storage.
//
// # Overview
//
// A [Cache] pairs a storage backend with a coder, a key builder, and
// call defaults (global key prefix, TTL). Wrapper factories turn an
// ordinary function into a memoized one with the same signature:
//
//	c, _ := memocache.New(backend.NewMemory(ctx), memocache.WithPrefix("app"), memocache.WithTTL(time.Minute))
//
//	getUser := memocache.Wrap(c, "users.Get", fetchUser, memocache.Namespace("users"))
//
//	u, err := getUser(ctx, 42)   // first call computes and stores
//	u, err = getUser(ctx, 42)    // second call decodes the stored result
//
// The defining property: a hit returns the decoded stored value and the
// wrapped computation does not run.
//
// # Backends
//
// The [github.com/cachence/memocache/backend] package provides an
// in-process map, Redis, SQLite, and a multi-tier composite. Backends
// store opaque bytes with TTL semantics and prefix-scoped clearing;
// serialization is entirely the coder's concern.
//
// # Coders
//
// The [github.com/cachence/memocache/coder] package provides JSON
// (encoding/json), a faster JSON (goccy/go-json), and msgpack. The JSON
// coders accept an injectable fallback for values the serializer cannot
// represent and a decode hook for post-processing stored bytes.
//
// # Keys
//
// [DefaultKeyBuilder] digests the function identity and arguments with
// xxhash into "prefix:namespace:hash". Equal arguments always produce
// equal keys; any difference in value, positional order, or argument
// name changes the key. Custom builders can be set globally
// ([WithKeyBuilder]) or per call site ([WithCallKeyBuilder]).
//
// # Blocking computations
//
// WrapBlocking and friends run context-free functions on a bounded
// worker pool while the caller waits with cancellation. If the caller's
// context is cancelled mid-computation the call unwinds cleanly and the
// late result is discarded, never stored.
//
// # Invalidation
//
// [Cache.ClearNamespace] removes one namespace, [Cache.Clear] removes
// everything under the cache's prefix, and [Cache.ClearKey] removes a
// single entry. [Cache.SetEnabled] toggles a global bypass at runtime.
//
// # Concurrency
//
// Two concurrent calls that miss on the same key both compute and both
// store; the last write wins. [WithSingleFlight] opts in to per-key
// deduplication when that tradeoff is wrong for the workload.
package memocache
