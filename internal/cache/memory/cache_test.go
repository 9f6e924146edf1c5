package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/repository"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache()
	defer c.Stop()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}

func TestCache_ReturnsCopy(t *testing.T) {
	c := NewCache()
	defer c.Stop()
	ctx := context.Background()

	original := []byte("value")
	require.NoError(t, c.Set(ctx, "key", original, 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), again)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache()
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 10*time.Millisecond))

	_, err := c.Get(ctx, "key")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "key")
	require.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_SetNX(t *testing.T) {
	c := NewCache()
	defer c.Stop()
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
	c := NewCache()
	defer c.Stop()
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

func TestCache_TTL(t *testing.T) {
	c := NewCache()
	defer c.Stop()
	ctx := context.Background()

	ttl, err := c.TTL(ctx, "missing")
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))
	ttl, err = c.TTL(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, time.Duration(-2), ttl)

	require.NoError(t, c.Set(ctx, "bounded", []byte("v"), time.Minute))
	ttl, err = c.TTL(ctx, "bounded")
	require.NoError(t, err)
	require.Greater(t, ttl, 50*time.Second)
}
