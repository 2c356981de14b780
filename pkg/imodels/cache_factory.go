package imodels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.etcd.io/bbolt"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeRedis represents a Redis cache.
	CacheTypeRedis CacheType = "redis"

	// CacheTypeBolt represents an on-disk bbolt cache.
	CacheTypeBolt CacheType = "bolt"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrRedisConfigRequired   = errors.New("redis configuration required for redis cache")
	ErrBoltConfigRequired    = errors.New("bolt configuration required for bolt cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig configures cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// Memory cache configuration
	Memory *MemoryCacheConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Redis cache configuration
	Redis *RedisCacheConfig

	// Bolt cache configuration
	Bolt *BoltCacheConfig

	// Common options applied to any backend. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int
}

// RedisCacheConfig configures the Redis cache.
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	// Client reuses an existing client instead of dialing Addr.
	Client redis.UniversalClient
}

// BoltCacheConfig configures the bbolt cache.
type BoltCacheConfig struct {
	// Path of the database file.
	Path string
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize: DefaultCacheOptions().MaxSize,
		},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	options := config.Options
	if options == nil {
		options = DefaultCacheOptions()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		maxSize := options.MaxSize
		if config.Memory != nil && config.Memory.MaxSize > 0 {
			maxSize = config.Memory.MaxSize
		}

		return NewMemoryCache(maxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeRedis:
		if config.Redis == nil {
			return nil, ErrRedisConfigRequired
		}

		client := config.Redis.Client
		if client == nil {
			client = redis.NewClient(&redis.Options{
				Addr:     config.Redis.Addr,
				Password: config.Redis.Password,
				DB:       config.Redis.DB,
			})
		}

		return NewRedisCache(client, options.KeyPrefix), nil

	case CacheTypeBolt:
		if config.Bolt == nil || config.Bolt.Path == "" {
			return nil, ErrBoltConfigRequired
		}

		return NewBoltCache(config.Bolt.Path)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// RedisCache stores entries as Redis strings under a key prefix.
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisCache creates a cache on an existing Redis client.
func NewRedisCache(rdb redis.UniversalClient, keyPrefix string) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: keyPrefix}
}

func (c *RedisCache) key(key string) string {
	if c.prefix == "" {
		return key
	}

	return c.prefix + ":" + key
}

// Get retrieves an entry.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if err != nil {
		return nil, fmt.Errorf("getting %s from redis: %w", key, err)
	}

	return decodeStoredEntry(key, data)
}

// Set stores an entry; Redis expires it at ExpiresAt.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := encodeStoredEntry(entry)
	if err != nil {
		return err
	}

	var ttl time.Duration

	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	err = c.rdb.Set(ctx, c.key(key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("setting %s in redis: %w", key, err)
	}

	return nil
}

// Delete removes an entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.rdb.Del(ctx, c.key(key)).Err()
	if err != nil {
		return fmt.Errorf("deleting %s from redis: %w", key, err)
	}

	return nil
}

// Clear removes all entries under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.key("*"), 0).Iterator()

	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	err := iter.Err()
	if err != nil {
		return fmt.Errorf("scanning redis keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	err = c.rdb.Del(ctx, keys...).Err()
	if err != nil {
		return fmt.Errorf("clearing redis cache: %w", err)
	}

	return nil
}

// Has reports whether a live entry exists.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

var boltCacheBucket = []byte("cache")

// BoltCache persists entries in a local bbolt database.
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache opens (or creates) the database at path.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltCacheBucket)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating bolt cache bucket: %w", err)
	}

	return &BoltCache{db: db}, nil
}

// Get retrieves an entry.
func (c *BoltCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	var data []byte

	err := c.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(boltCacheBucket).Get([]byte(key))
		if value != nil {
			data = append([]byte(nil), value...)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s from bolt: %w", key, err)
	}

	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	return decodeStoredEntry(key, data)
}

// Set stores an entry.
func (c *BoltCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := encodeStoredEntry(entry)
	if err != nil {
		return err
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltCacheBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("writing %s to bolt: %w", key, err)
	}

	return nil
}

// Delete removes an entry.
func (c *BoltCache) Delete(ctx context.Context, key string) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltCacheBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting %s from bolt: %w", key, err)
	}

	return nil
}

// Clear removes all entries.
func (c *BoltCache) Clear(ctx context.Context) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket(boltCacheBucket)
		if err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}

		_, err = tx.CreateBucket(boltCacheBucket)

		return err
	})
	if err != nil {
		return fmt.Errorf("clearing bolt cache: %w", err)
	}

	return nil
}

// Has reports whether a live entry exists.
func (c *BoltCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

// CacheChain implements a chain of cache backends (L1, L2, etc.)
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{
		caches: caches,
	}
}

// Get retrieves an item from the cache chain.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err == nil {
			// Found in this cache, populate earlier caches
			for j := range i {
				_ = c.caches[j].Set(ctx, key, entry)
			}

			return entry, nil
		}
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores an item in all caches.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var errs []error

	for _, cache := range c.caches {
		errs = append(errs, cache.Set(ctx, key, entry))
	}

	return errors.Join(errs...)
}

// Delete removes an item from all caches.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, cache := range c.caches {
		errs = append(errs, cache.Delete(ctx, key))
	}

	return errors.Join(errs...)
}

// Clear removes all items from all caches.
func (c *CacheChain) Clear(ctx context.Context) error {
	var errs []error

	for _, cache := range c.caches {
		errs = append(errs, cache.Clear(ctx))
	}

	return errors.Join(errs...)
}

// Has checks if a key exists in any cache.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}
