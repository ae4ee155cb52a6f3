package seotoolkit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// Cache entry lifetimes. Taxonomy descriptions change rarely and keep for a
// week; everything else keeps for a day.
const (
	DayTTL  = 24 * time.Hour
	WeekTTL = 7 * 24 * time.Hour
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("seotoolkit: cache miss")

// Cache is a TTL-bound key/value store holding derived data only. Entries
// must always be regenerable by recomputation; nothing may treat the cache
// as authoritative storage.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}

// cacheKey derives the store key for a computation purpose and entity id.
func cacheKey(purpose string, id int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("seotoolkit|%s|%d", purpose, id)))
	return hex.EncodeToString(sum[:])
}

// cached returns the JSON-decoded cache value for key, computing and storing
// it on a miss. Cache failures fall through to recomputation; a broken cache
// never breaks a response.
func cached[T any](c Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if raw, err := c.Get(context.Background(), key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}
	v, err := fn()
	if err != nil {
		return zero, err
	}
	if raw, err := json.Marshal(v); err == nil {
		_ = c.Set(context.Background(), key, raw, ttl)
	}
	return v, nil
}

// MemoryCache is an in-process Cache used when no external store is
// configured, and in tests.
type MemoryCache struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryCache creates a MemoryCache. Expired entries are rejected on read;
// no background eviction goroutine is started.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: ttlcache.New[string, []byte](
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

// Get returns the value for key or ErrCacheMiss.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	item := m.items.Get(key)
	if item == nil {
		return nil, ErrCacheMiss
	}
	return item.Value(), nil
}

// Set stores value under key for ttl.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Set(key, value, ttl)
	return nil
}

// Delete removes key.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Flush removes every entry.
func (m *MemoryCache) Flush(_ context.Context) error {
	m.items.DeleteAll()
	return nil
}

// RedisCache is a Redis-backed Cache shared across replicas.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a RedisCache on an existing client. All keys are
// namespaced under prefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "seotoolkit:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the value for key or ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return value, nil
}

// Set stores value under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Delete removes key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Flush removes every key under the cache prefix.
func (r *RedisCache) Flush(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
