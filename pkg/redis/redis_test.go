package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = Close()
		SetClient(nil)
	})
	return mr
}

func TestLockReleaseNeedsToken(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	token, ok, err := AcquireLock(ctx, "lock:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = AcquireLock(ctx, "lock:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := ReleaseLock(ctx, "lock:a", "someone-else")
	require.NoError(t, err)
	assert.False(t, released)
	assert.True(t, mr.Exists("lock:a"))

	released, err = ReleaseLock(ctx, "lock:a", token)
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, mr.Exists("lock:a"))
}

func TestExpiredLockKeepsNextHolder(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	first, ok, err := AcquireLock(ctx, "lock:b", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	second, ok, err := AcquireLock(ctx, "lock:b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := ReleaseLock(ctx, "lock:b", first)
	require.NoError(t, err)
	assert.False(t, released)

	held, err := mr.Get("lock:b")
	require.NoError(t, err)
	assert.Equal(t, second, held)
}

func TestNotConnected(t *testing.T) {
	SetClient(nil)
	_, _, err := AcquireLock(context.Background(), "lock:c", time.Second)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, Ping(context.Background()), ErrNotConnected)
}
