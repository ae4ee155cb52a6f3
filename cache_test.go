package seotoolkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCacheKeyDerivation(t *testing.T) {
	a := cacheKey("facebook-article", 7)
	b := cacheKey("facebook-article", 7)
	if a != b {
		t.Errorf("same inputs produced %q and %q", a, b)
	}
	if a == cacheKey("facebook-article", 8) {
		t.Error("distinct ids share a key")
	}
	if a == cacheKey("twitter-article", 7) {
		t.Error("distinct purposes share a key")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestCachedComputesOnce(t *testing.T) {
	c := NewMemoryCache()
	calls := 0
	compute := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, err := cached(c, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	second, err := cached(c, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if len(first) != 2 || len(second) != 2 || second[0] != "a" {
		t.Errorf("values = %v, %v", first, second)
	}
}

func TestCachedComputeErrorNotStored(t *testing.T) {
	c := NewMemoryCache()
	boom := errors.New("boom")
	if _, err := cached(c, "k", time.Minute, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("cached error = %v, want boom", err)
	}
	// The failure left nothing behind; the next call computes again.
	v, err := cached(c, "k", time.Minute, func() (int, error) { return 42, nil })
	if err != nil || v != 42 {
		t.Errorf("cached = %d, %v, want 42", v, err)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Errorf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Get after delete error = %v, want ErrCacheMiss", err)
	}

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := c.Get(ctx, "a"); err != ErrCacheMiss {
		t.Errorf("Get after flush error = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "")
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Errorf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Get after delete error = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCacheFlushScopedToPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "")
	ctx := context.Background()

	if err := c.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "k2", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// A key another application owns on the same server.
	if err := client.Set(ctx, "foreign", "keep", 0).Err(); err != nil {
		t.Fatalf("client.Set: %v", err)
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := c.Get(ctx, "k1"); err != ErrCacheMiss {
		t.Errorf("Get(k1) after flush error = %v, want ErrCacheMiss", err)
	}
	if v, err := client.Get(ctx, "foreign").Result(); err != nil || v != "keep" {
		t.Errorf("foreign key = %q, %v; want untouched", v, err)
	}
}
