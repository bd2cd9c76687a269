package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunCacheContract(t, redis.NewFromClient(client))
}

func TestRedisCache_TTL(t *testing.T) {
	mr, client := newClient(t)
	cache := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "form:42", []byte("{}"), time.Second))
	assert.True(t, mr.Exists("wayfinder:form:42"))

	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "form:42")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisCache_Prefix(t *testing.T) {
	mr, client := newClient(t)
	cache := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "workshops", []byte("[]"), 0))
	assert.True(t, mr.Exists("custom:app:workshops"), "Expected key with custom prefix to exist")
	assert.Equal(t, "custom:app:", cache.Prefix())
}

func TestRedisCache_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	cache := redis.NewFromClient(client)
	mr.Close()

	_, err = cache.Get(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss, "connection errors are not cache misses")
}
