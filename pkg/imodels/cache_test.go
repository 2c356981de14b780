package imodels_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

func newRedisCache(t *testing.T) *imodels.RedisCache {
	t.Helper()

	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return imodels.NewRedisCache(rdb, "test")
}

func newBoltCache(t *testing.T) *imodels.BoltCache {
	t.Helper()

	cache, err := imodels.NewBoltCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return cache
}

func cacheBackends() map[string]func(t *testing.T) imodels.Cache {
	return map[string]func(t *testing.T) imodels.Cache{
		"memory": func(*testing.T) imodels.Cache { return imodels.NewMemoryCache(10) },
		"redis":  func(t *testing.T) imodels.Cache { return newRedisCache(t) },
		"bolt":   func(t *testing.T) imodels.Cache { return newBoltCache(t) },
		"chain": func(t *testing.T) imodels.Cache {
			return imodels.NewCacheChain(imodels.NewMemoryCache(10), newBoltCache(t))
		},
	}
}

func TestCacheBackends(t *testing.T) {
	t.Parallel()

	for name, newCache := range cacheBackends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			cache := newCache(t)

			changeset := imodels.Changeset{ID: "cs1", Index: 1}

			entry, err := imodels.NewCacheEntry(changeset, time.Hour)
			require.NoError(t, err)

			// Set and Get
			require.NoError(t, cache.Set(ctx, "changeset/imodel-1/cs1", entry))
			assert.True(t, cache.Has(ctx, "changeset/imodel-1/cs1"))

			retrieved, err := cache.Get(ctx, "changeset/imodel-1/cs1")
			require.NoError(t, err)

			var decoded imodels.Changeset

			require.NoError(t, retrieved.Decode(&decoded))
			assert.Equal(t, changeset.ID, decoded.ID)
			assert.Equal(t, changeset.Index, decoded.Index)

			// Missing key
			_, err = cache.Get(ctx, "changeset/imodel-1/missing")
			require.Error(t, err)
			assert.False(t, cache.Has(ctx, "changeset/imodel-1/missing"))

			// Expired entry
			expired := &imodels.CacheEntry{Data: []byte(`{}`), ExpiresAt: time.Now().Add(-time.Minute)}
			require.NoError(t, cache.Set(ctx, "expired", expired))
			_, err = cache.Get(ctx, "expired")
			require.Error(t, err)

			// Delete
			require.NoError(t, cache.Delete(ctx, "changeset/imodel-1/cs1"))
			assert.False(t, cache.Has(ctx, "changeset/imodel-1/cs1"))

			// Clear
			require.NoError(t, cache.Set(ctx, "a", entry))
			require.NoError(t, cache.Set(ctx, "b", entry))
			require.NoError(t, cache.Clear(ctx))
			assert.False(t, cache.Has(ctx, "a"))
			assert.False(t, cache.Has(ctx, "b"))
		})
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := imodels.NewMemoryCache(2)
	entry := &imodels.CacheEntry{Data: []byte(`1`)}

	require.NoError(t, cache.Set(ctx, "a", entry))
	require.NoError(t, cache.Set(ctx, "b", entry))

	_, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "c", entry))

	assert.True(t, cache.Has(ctx, "a"))
	assert.False(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
	assert.Equal(t, 2, cache.Len())
}

func TestMemoryCache_ExpiredError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := imodels.NewMemoryCache(0)

	require.NoError(t, cache.Set(ctx, "a", &imodels.CacheEntry{ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := cache.Get(ctx, "a")
	require.ErrorIs(t, err, imodels.ErrCacheEntryExpired)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Get(ctx, "a")
	require.ErrorIs(t, err, imodels.ErrCacheKeyNotFound)
}

func TestRedisCache_UsesPrefixAndTTL(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	cache := imodels.NewRedisCache(rdb, "imodels")

	entry, err := imodels.NewCacheEntry("value", time.Minute)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "key", entry))

	assert.True(t, server.Exists("imodels:key"))
	assert.Greater(t, server.TTL("imodels:key"), time.Duration(0))

	server.FastForward(2 * time.Minute)
	assert.False(t, cache.Has(ctx, "key"))
}

func TestCacheChain_PopulatesEarlierLevels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l1 := imodels.NewMemoryCache(10)
	l2 := imodels.NewMemoryCache(10)
	chain := imodels.NewCacheChain(l1, l2)

	require.NoError(t, l2.Set(ctx, "key", &imodels.CacheEntry{Data: []byte(`1`)}))
	assert.False(t, l1.Has(ctx, "key"))

	_, err := chain.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, l1.Has(ctx, "key"))

	_, err = chain.Get(ctx, "missing")
	require.ErrorIs(t, err, imodels.ErrKeyNotFoundInAnyCache)
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := imodels.NewNoOpCache()

	require.NoError(t, cache.Set(ctx, "key", &imodels.CacheEntry{}))
	assert.False(t, cache.Has(ctx, "key"))

	_, err := cache.Get(ctx, "key")
	require.Error(t, err)
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)

	tests := []struct {
		name    string
		config  *imodels.CacheConfig
		wantErr error
		check   func(t *testing.T, cache imodels.Cache)
	}{
		{
			name:   "nil config is memory",
			config: nil,
			check: func(t *testing.T, cache imodels.Cache) {
				t.Helper()
				assert.IsType(t, &imodels.MemoryCache{}, cache)
			},
		},
		{
			name:   "memory",
			config: &imodels.CacheConfig{Type: imodels.CacheTypeMemory, Memory: &imodels.MemoryCacheConfig{MaxSize: 5}},
			check: func(t *testing.T, cache imodels.Cache) {
				t.Helper()
				assert.IsType(t, &imodels.MemoryCache{}, cache)
			},
		},
		{
			name:   "none",
			config: &imodels.CacheConfig{Type: imodels.CacheTypeNone},
			check: func(t *testing.T, cache imodels.Cache) {
				t.Helper()
				assert.IsType(t, &imodels.NoOpCache{}, cache)
			},
		},
		{
			name:   "redis",
			config: &imodels.CacheConfig{Type: imodels.CacheTypeRedis, Redis: &imodels.RedisCacheConfig{Addr: server.Addr()}},
			check: func(t *testing.T, cache imodels.Cache) {
				t.Helper()
				require.NoError(t, cache.Set(context.Background(), "k", &imodels.CacheEntry{Data: []byte(`1`)}))
				assert.True(t, server.Exists("imodels:k"))
			},
		},
		{
			name:    "redis without config",
			config:  &imodels.CacheConfig{Type: imodels.CacheTypeRedis},
			wantErr: imodels.ErrRedisConfigRequired,
		},
		{
			name:    "bolt without path",
			config:  &imodels.CacheConfig{Type: imodels.CacheTypeBolt, Bolt: &imodels.BoltCacheConfig{}},
			wantErr: imodels.ErrBoltConfigRequired,
		},
		{
			name:    "nats without config",
			config:  &imodels.CacheConfig{Type: imodels.CacheTypeNATS},
			wantErr: imodels.ErrNATSConfigRequired,
		},
		{
			name:    "unsupported",
			config:  &imodels.CacheConfig{Type: "memcached"},
			wantErr: imodels.ErrUnsupportedCacheType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache, err := imodels.NewCacheFromConfig(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, cache)
		})
	}
}
