package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Contract(t *testing.T) {
	ports.RunCacheContract(t, memory.NewCache())
}

func TestMemoryCache_Expiration(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := memory.NewCache(memory.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(2 * time.Minute)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
	assert.Equal(t, 1, cache.Len(), "expired entry is dropped on read")

	_, err = cache.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryCache_Isolation(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, cache.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := cache.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
