package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) Backend {
	t.Helper()
	b, err := NewSQLite(context.Background(), ":memory:", WithSweepInterval(time.Minute))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close(context.Background()) })
	return b
}

func TestSQLiteSetGet(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)

	data, found, err := b.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)

	require.NoError(t, b.Set(ctx, "key", []byte("value"), time.Minute))
	data, found, err = b.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value"), data)

	// Overwrite.
	require.NoError(t, b.Set(ctx, "key", []byte("updated"), time.Minute))
	data, _, err = b.Get(ctx, "key")
	assert.NoError(t, err)
	assert.Equal(t, []byte("updated"), data)
}

func TestSQLiteLazyExpiry(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)

	require.NoError(t, b.Set(ctx, "key", []byte("value"), 10*time.Millisecond))
	time.Sleep(11 * time.Millisecond)

	_, found, err := b.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteNoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)

	require.NoError(t, b.Set(ctx, "key", []byte("value"), 0))
	time.Sleep(20 * time.Millisecond)

	_, found, err := b.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
}

func TestSQLiteClear(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)

	require.NoError(t, b.Set(ctx, "app:users:1", []byte("1"), 0))
	require.NoError(t, b.Set(ctx, "app:users:2", []byte("2"), 0))
	require.NoError(t, b.Set(ctx, "app:products:1", []byte("3"), 0))

	removed, err := b.Clear(ctx, "app:users:", "")
	assert.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = b.Clear(ctx, "", "app:products:1")
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = b.Clear(ctx, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestSQLiteLikeEscaping(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)

	// A literal underscore in the prefix must not act as a wildcard.
	require.NoError(t, b.Set(ctx, "ns_a:1", []byte("1"), 0))
	require.NoError(t, b.Set(ctx, "nsXa:1", []byte("2"), 0))

	removed, err := b.Clear(ctx, "ns_a:", "")
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, found, _ := b.Get(ctx, "nsXa:1")
	assert.True(t, found)
}

func TestSQLiteFileBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	b, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "key", []byte("value"), 0))
	require.NoError(t, b.Close(ctx))

	// Reopen: the entry survives the restart.
	b, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer b.Close(ctx)
	data, found, err := b.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value"), data)
}
