package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStore_SetGetRoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "articles:all", `[{"id":1}]`, 60*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, err := store.Get(ctx, "articles:all")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != `[{"id":1}]` {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestRedisStore_MissingKeyIsCacheMiss(t *testing.T) {
	store, _ := setupRedisStore(t)

	if _, err := store.Get(context.Background(), "articles:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisStore_ExpiredKeyIsCacheMiss(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "articles:all", "[]", 60*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(61 * time.Second)

	if _, err := store.Get(ctx, "articles:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestRedisStore_DelRemovesKey(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "articles:all", "[]", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Del(ctx, "articles:all"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := store.Get(ctx, "articles:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}

	// 删除不存在的键不是错误
	if err := store.Del(ctx, "articles:all"); err != nil {
		t.Fatalf("del missing key: %v", err)
	}
}

func TestRedisStore_IncrIsMonotonic(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	first, err := store.Incr(ctx, "pageviews:article:1")
	if err != nil {
		t.Fatalf("first incr: %v", err)
	}
	second, err := store.Incr(ctx, "pageviews:article:1")
	if err != nil {
		t.Fatalf("second incr: %v", err)
	}

	if first != 1 || second != 2 {
		t.Fatalf("expected 1 then 2, got %d then %d", first, second)
	}
}
