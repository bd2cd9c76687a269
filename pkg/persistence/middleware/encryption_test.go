package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunCacheContract(t, mw(memory.NewCache()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewCache()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Set(ctx, "form:7", []byte(`{"phone":"+7 999 123-45-67"}`), 0))

	raw, err := underlying.Get(ctx, "form:7")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "999", "plaintext must not reach the backing cache")
	assert.Contains(t, string(raw), "__encrypted__")

	plain, err := secure.Get(ctx, "form:7")
	require.NoError(t, err)
	assert.Equal(t, `{"phone":"+7 999 123-45-67"}`, string(plain))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewCache()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureOld.Set(ctx, "k", []byte("old"), 0))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	got, err := secureNew.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	require.NoError(t, secureNew.Set(ctx, "k", []byte("new"), 0))

	_, err = secureOld.Get(ctx, "k")
	assert.Error(t, err, "old key alone cannot read values written with the new key")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewCache()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, underlying.Set(ctx, "k", []byte(`{"kind":"review"}`), 0))

	_, err := secure.Get(ctx, "k")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKeys(t *testing.T) {
	active := generateKey(t)
	fallback := generateKey(t)

	cfg, err := middleware.ParseKeys([]string{hex.EncodeToString(active), hex.EncodeToString(fallback)})
	require.NoError(t, err)
	assert.Equal(t, active, cfg.ActiveKey)
	assert.Equal(t, [][]byte{fallback}, cfg.FallbackKeys)

	_, err = middleware.ParseKeys(nil)
	assert.Error(t, err)

	_, err = middleware.ParseKeys([]string{strings.Repeat("zz", 32)})
	assert.Error(t, err)

	_, err = middleware.ParseKeys([]string{"abcd"})
	assert.Error(t, err)
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.Cache) ports.Cache {
			return recordingCache{Cache: next, name: name, calls: &calls}
		}
	}

	cache := middleware.Chain(memory.NewCache(), tag("outer"), tag("inner"))
	require.NoError(t, cache.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type recordingCache struct {
	ports.Cache
	name  string
	calls *[]string
}

func (r recordingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	*r.calls = append(*r.calls, r.name)
	return r.Cache.Set(ctx, key, value, ttl)
}
