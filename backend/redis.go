package backend

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBackend struct {
	client *redis.Client
	cfg    config
}

var _ Backend = (*redisBackend)(nil)

// NewRedis returns a Backend delegating to a Redis client. The caller
// owns the client lifecycle — Close is a no-op on the client. Expiry
// uses native Redis TTLs, so no background sweeper runs.
func NewRedis(client *redis.Client, opts ...Option) Backend {
	return &redisBackend{
		client: client,
		cfg:    applyOptions(opts),
	}
}

func (b *redisBackend) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, b.cfg.queryTimeout)
}

func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	qctx, cancel := b.queryCtx(ctx)
	defer cancel()
	data, err := b.client.Get(qctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Key: key, Err: err}
	}
	return data, true, nil
}

func (b *redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	qctx, cancel := b.queryCtx(ctx)
	defer cancel()
	if ttl < 0 {
		ttl = 0
	}
	if err := b.client.Set(qctx, key, value, ttl).Err(); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Clear removes a single key with DEL, or enumerates a prefix with SCAN
// and deletes the matches. Redis has no native prefix-delete, so the
// prefix path is a pattern scan; it is O(keyspace) and intended for
// invalidation, not hot paths.
func (b *redisBackend) Clear(ctx context.Context, prefix, key string) (int, error) {
	qctx, cancel := b.queryCtx(ctx)
	defer cancel()
	if key != "" {
		removed, err := b.client.Del(qctx, key).Result()
		if err != nil {
			return 0, &Error{Op: "clear", Key: key, Err: err}
		}
		return int(removed), nil
	}
	match := prefix + "*"
	iter := b.client.Scan(qctx, 0, match, 100).Iterator()
	var removed int
	for iter.Next(qctx) {
		n, err := b.client.Del(qctx, iter.Val()).Result()
		if err != nil {
			return removed, &Error{Op: "clear", Key: iter.Val(), Err: err}
		}
		removed += int(n)
	}
	if err := iter.Err(); err != nil {
		return removed, &Error{Op: "clear", Err: err}
	}
	return removed, nil
}

// Close is a no-op — the caller owns the redis.Client lifecycle.
func (b *redisBackend) Close(_ context.Context) error {
	return nil
}
