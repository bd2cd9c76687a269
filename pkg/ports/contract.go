package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCacheContract runs a suite of tests to verify that a Cache implementation
// adheres to the defined interface contract.
func RunCacheContract(t *testing.T, cache Cache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405.000000")

	t.Run("Set and Get", func(t *testing.T) {
		err := cache.Set(ctx, key, []byte(`{"kind":"review"}`), time.Minute)
		require.NoError(t, err, "Set should not return error")

		got, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, `{"kind":"review"}`, string(got))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, []byte("first"), 0))
		require.NoError(t, cache.Set(ctx, key, []byte("second"), 0))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, []byte("value"), 0))

		err := cache.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = cache.Get(ctx, key)
		assert.ErrorIs(t, err, ErrCacheMiss, "Get after Delete should return ErrCacheMiss")

		assert.NoError(t, cache.Delete(ctx, key), "Deleting an absent key is not an error")
	})
}
