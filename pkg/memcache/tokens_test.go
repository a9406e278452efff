package mem

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisTokens(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisTokens(client, "reset")
	ctx := context.Background()

	t.Run("consume is single use", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "abc", "ana@example.com", time.Minute))
		assert.True(t, mr.Exists("reset:abc"))

		v, err := store.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", v)

		v, err = store.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.Empty(t, v)
	})

	t.Run("peek does not consume", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "jti-1", "1", time.Minute))

		v, ok, err := store.Peek(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", v)

		_, ok, err = store.Peek(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expires with ttl", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "short", "x", time.Second))
		mr.FastForward(2 * time.Second)

		_, ok, err := store.Peek(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLocalTokens(t *testing.T) {
	store := NewLocalTokens()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "tok", "v", time.Minute))

	_, ok, err := store.Peek(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	v, err := store.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.Empty(t, v, "expired tokens are not returned")
}
