package cache

import (
	"context"
	"testing"
	"time"

	"github.com/roofpo/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSummary struct {
	OrderCount int64  `json:"order_count"`
	Committed  string `json:"committed"`
}

func TestInMemoryJSONCache_RoundTrip(t *testing.T) {
	c := NewInMemoryJSONCache()
	ctx := context.Background()

	var got cachedSummary
	hit, err := c.Get(ctx, "dashboard:all", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "dashboard:all", cachedSummary{OrderCount: 4, Committed: "1200.00"}, time.Minute))

	hit, err = c.Get(ctx, "dashboard:all", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(4), got.OrderCount)
}

func TestInMemoryJSONCache_Expiry(t *testing.T) {
	c := NewInMemoryJSONCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedSummary{}, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	var got cachedSummary
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotContains(t, c.entries, "k", "expired entry is dropped on read")
}

func TestInMemoryJSONCache_SetSweepsExpired(t *testing.T) {
	c := NewInMemoryJSONCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dashboard:2026-10-13", cachedSummary{OrderCount: 3}, 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "dashboard:keep", cachedSummary{OrderCount: 4}, time.Hour))
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, c.Set(ctx, "dashboard:2026-10-14", cachedSummary{OrderCount: 5}, time.Hour))

	assert.NotContains(t, c.entries, "dashboard:2026-10-13")
	assert.Len(t, c.entries, 2)

	var got cachedSummary
	hit, err := c.Get(ctx, "dashboard:keep", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(4), got.OrderCount)
}

func TestInMemoryJSONCache_DeletePrefix(t *testing.T) {
	c := NewInMemoryJSONCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dashboard:a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "dashboard:b", 2, time.Minute))
	require.NoError(t, c.Set(ctx, "other:c", 3, time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, "dashboard:"))

	var n int
	hit, _ := c.Get(ctx, "dashboard:a", &n)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "other:c", &n)
	assert.True(t, hit)
	assert.Equal(t, 3, n)
}

func TestNewBackend(t *testing.T) {
	t.Run("disabled redis uses memory", func(t *testing.T) {
		b, err := NewBackend(config.RedisConfig{Enabled: false})
		require.NoError(t, err)
		assert.False(t, b.UsesRedis())
		assert.IsType(t, &InMemoryIdempotencyStore{}, b.IdempotencyStore())
		assert.IsType(t, &InMemoryJSONCache{}, b.JSONCache("dashboard:"))
		assert.NoError(t, b.Close())
	})

	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back", func(t *testing.T) {
		b, err := NewBackend(unreachable)
		require.NoError(t, err)
		assert.Nil(t, b.Client())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		_, err := NewBackend(unreachable, WithInMemoryFallback(false))
		assert.Error(t, err)
	})
}
