package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/repository"
)

// newTestCache spins up a miniredis instance and a cache on top of it.
func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewCacheWithClient(client, zerolog.Nop())
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_SetNX(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "key", []byte("first"), 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SetNX(ctx, "key", []byte("second"), 0)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), got)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cache:blog:a", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "cache:blog:b", []byte("b"), 0))
	require.NoError(t, c.Set(ctx, "cache:tags", []byte("t"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, "cache:blog"))

	_, err := c.Get(ctx, "cache:blog:a")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
	_, err = c.Get(ctx, "cache:blog:b")
	require.ErrorIs(t, err, repository.ErrCacheMiss)

	got, err := c.Get(ctx, "cache:tags")
	require.NoError(t, err)
	require.Equal(t, []byte("t"), got)
}

func TestCache_ExistsAndDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	exists, err := c.Exists(ctx, "key")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	exists, err = c.Exists(ctx, "key")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, c.Delete(ctx, "key"))

	exists, err = c.Exists(ctx, "key")
	require.NoError(t, err)
	require.False(t, exists)
}
