package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	config := DefaultConfig()
	config.Addr = mr.Addr()

	cache := NewRedisCache(config)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	type entry struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	if err := cache.Set("task:abc", entry{Title: "Water plants", Count: 2}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got entry
	if err := cache.Get("task:abc", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Water plants" || got.Count != 2 {
		t.Errorf("Unexpected value: %+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	var dest string
	if err := cache.Get("missing", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	cache, _ := setupTestCache(t)

	cache.Set("task:1", "a", time.Minute)
	if err := cache.Delete("task:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var dest string
	if err := cache.Get("task:1", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestDeletePattern(t *testing.T) {
	cache, _ := setupTestCache(t)

	cache.Set("journal:user1:a", "a", time.Minute)
	cache.Set("journal:user1:b", "b", time.Minute)
	cache.Set("journal:user2:a", "c", time.Minute)

	if err := cache.DeletePattern("journal:user1:*"); err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}

	var dest string
	if err := cache.Get("journal:user1:a", &dest); err != ErrCacheMiss {
		t.Errorf("Expected user1 keys evicted, got %v", err)
	}
	if err := cache.Get("journal:user2:a", &dest); err != nil {
		t.Errorf("Expected user2 key untouched, got %v", err)
	}
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)

	cache.Set("task:ttl", "soon gone", time.Second)
	mr.FastForward(2 * time.Second)

	var dest string
	if err := cache.Get("task:ttl", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestBreakerOpensWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)

	config := DefaultConfig()
	config.Addr = mr.Addr()
	config.MaxRetries = 0
	config.DialTimeout = 100 * time.Millisecond
	config.ReadTimeout = 100 * time.Millisecond
	config.WriteTimeout = 100 * time.Millisecond

	cache := NewRedisCache(config)
	defer cache.Close()

	mr.Close()

	for i := 0; i < 6; i++ {
		cache.Set("k", "v", time.Minute)
	}

	if !cache.breaker.IsOpen() {
		t.Error("Expected breaker to open after repeated failures")
	}

	if err := cache.Set("k", "v", time.Minute); err != ErrBreakerOpen {
		t.Errorf("Expected ErrBreakerOpen, got %v", err)
	}
}
