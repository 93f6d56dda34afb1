package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestIdempotencyCache_SetAndGet(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	key := "checkout:user-1:abc"
	value := []byte(`{"order":{"id":17,"status":"PENDING"}}`)

	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	require.NoError(t, cache.Set(ctx, key, value, 24*time.Hour))

	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestIdempotencyCache_TTLExpiry(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "checkout:user-1:k", []byte(`{}`), time.Second))

	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, "checkout:user-1:k")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestIdempotencyCache_AcquireRelease(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	ok, err := cache.Acquire(ctx, "checkout:user-1:k", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Exists("idempotency:lock:checkout:user-1:k"))

	ok, err = cache.Acquire(ctx, "checkout:user-1:k", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while the first holds the marker")

	require.NoError(t, cache.Release(ctx, "checkout:user-1:k"))

	ok, err = cache.Acquire(ctx, "checkout:user-1:k", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyCache_AcquireExpires(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	ok, err := cache.Acquire(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(6 * time.Second)

	ok, err = cache.Acquire(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyCache_RedisDown(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewIdempotencyCache(client)
	s.Close()

	_, err := cache.Get(context.Background(), "k")
	assert.ErrorContains(t, err, "redis idempotency get")
}
