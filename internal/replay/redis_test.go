package replay

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLedger(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewRedis(client, "test"), mr
}

func TestRedis_ClaimOncePerTTL(t *testing.T) {
	l, mr := setupRedisLedger(t)
	ctx := context.Background()

	ok, err := l.Claim(ctx, "sig-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:sig-a"))

	ok, err = l.Claim(ctx, "sig-a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Claim(ctx, "sig-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_ServerDown(t *testing.T) {
	l, mr := setupRedisLedger(t)
	mr.Close()

	_, err := l.Claim(context.Background(), "sig-b", time.Minute)
	assert.Error(t, err)
}

func TestNewRedisFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	l, err := NewRedisFromURL(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer l.Close()

	ok, err := l.Claim(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewRedisFromURL(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestRedis_ReleaseAllowsReclaim(t *testing.T) {
	l, mr := setupRedisLedger(t)
	ctx := context.Background()

	ok, err := l.Claim(ctx, "sig-r", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "sig-r"))
	assert.False(t, mr.Exists("test:sig-r"))

	ok, err = l.Claim(ctx, "sig-r", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
