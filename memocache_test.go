package memocache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachence/memocache/backend"
	"github.com/cachence/memocache/coder"
)

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	ctx := context.Background()
	c, err := New(backend.NewMemory(ctx), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })
	return c
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewDefaults(t *testing.T) {
	c := newTestCache(t)
	assert.NotNil(t, c.Backend())
	assert.Equal(t, "json", c.Coder().Name())
	assert.NotNil(t, c.KeyBuilder())
	assert.Equal(t, "", c.Prefix())
	assert.Equal(t, time.Duration(0), c.TTL())
	assert.True(t, c.Enabled())
}

func TestNewOptions(t *testing.T) {
	c := newTestCache(t,
		WithPrefix("app"),
		WithTTL(time.Minute),
		WithCoder(coder.NewMsgpack()),
		WithDisabled(),
	)
	assert.Equal(t, "app", c.Prefix())
	assert.Equal(t, time.Minute, c.TTL())
	assert.Equal(t, "msgpack", c.Coder().Name())
	assert.False(t, c.Enabled())

	c.SetEnabled(true)
	assert.True(t, c.Enabled())
}

func TestNilCacheOperations(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	_, err := c.Clear(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.KeyFor("ns", "fn")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, c.Put(ctx, "k", 1, 0), ErrNotConfigured)
	_, _, err = Get[int](ctx, c, "k")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, c.Close(ctx))
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, WithPrefix("app"))

	key, err := c.KeyFor("users", "users.Get", 1)
	require.NoError(t, err)
	assert.True(t, len(key) > 0)

	require.NoError(t, c.Put(ctx, key, map[string]int{"id": 1}, time.Minute))

	found, val, err := Get[map[string]int](ctx, c, key)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"id": 1}, val)
}

func TestClearNamespaceScoped(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, WithPrefix("app"))

	usersKey, err := c.KeyFor("users", "users.Get", 1)
	require.NoError(t, err)
	productsKey, err := c.KeyFor("products", "products.Get", 1)
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, usersKey, 1, 0))
	require.NoError(t, c.Put(ctx, productsKey, 2, 0))

	removed, err := c.ClearNamespace(ctx, "users")
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	found, _, err := Get[int](ctx, c, usersKey)
	assert.NoError(t, err)
	assert.False(t, found)
	found, _, err = Get[int](ctx, c, productsKey)
	assert.NoError(t, err)
	assert.True(t, found)
}

func TestClearAllUnderPrefix(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(ctx)
	defer mem.Close(ctx)

	c, err := New(mem, WithPrefix("app"))
	require.NoError(t, err)
	other, err := New(mem, WithPrefix("other"))
	require.NoError(t, err)

	k1, _ := c.KeyFor("users", "users.Get", 1)
	k2, _ := other.KeyFor("users", "users.Get", 1)
	require.NoError(t, c.Put(ctx, k1, 1, 0))
	require.NoError(t, other.Put(ctx, k2, 2, 0))

	removed, err := c.Clear(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The sibling cache's keyspace is untouched.
	found, _, err := Get[int](ctx, other, k2)
	assert.NoError(t, err)
	assert.True(t, found)
}

func TestClearKey(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, WithPrefix("app"))

	key, err := c.KeyFor("users", "users.Get", 1)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, key, 1, 0))

	removed, err := c.ClearKey(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	found, _, err := Get[int](ctx, c, key)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("MEMOCACHE_PREFIX", "envapp")
	t.Setenv("MEMOCACHE_TTL", "1h30m")
	t.Setenv("MEMOCACHE_DISABLED", "true")

	c := newTestCache(t, FromEnv())
	assert.Equal(t, "envapp", c.Prefix())
	assert.Equal(t, 90*time.Minute, c.TTL())
	assert.False(t, c.Enabled())
}

func TestFromEnvInvalidTTL(t *testing.T) {
	t.Setenv("MEMOCACHE_TTL", "not-a-duration")

	_, err := New(backend.NewMemory(context.Background()), FromEnv())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MEMOCACHE_TTL")
}

func TestOptionsOverrideEnv(t *testing.T) {
	t.Setenv("MEMOCACHE_PREFIX", "envapp")

	// Later options win, matching application order.
	c := newTestCache(t, FromEnv(), WithPrefix("explicit"))
	assert.Equal(t, "explicit", c.Prefix())
}
