package cache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry represents a cached item with expiration
type cacheEntry struct {
	data      []byte
	expiresAt time.Time // zero means the entry never expires
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-memory LRU cache with TTL support
type MemoryCache struct {
	cache  *lru.Cache[string, *cacheEntry]
	ttl    time.Duration
	mu     sync.RWMutex
	hits   atomic.Uint64
	misses atomic.Uint64
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(size int, ttl time.Duration) (*MemoryCache, error) {
	cache, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, err
	}

	mc := &MemoryCache{
		cache: cache,
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go mc.cleanupLoop()

	return mc, nil
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(key string) ([]byte, bool) {
	mc.mu.RLock()
	entry, ok := mc.cache.Get(key)
	mc.mu.RUnlock()

	if !ok {
		mc.misses.Add(1)
		return nil, false
	}

	if entry.expired(time.Now()) {
		mc.mu.Lock()
		mc.cache.Remove(key)
		mc.mu.Unlock()
		mc.misses.Add(1)
		return nil, false
	}

	mc.hits.Add(1)
	return entry.data, true
}

// Set stores a value with the default TTL
func (mc *MemoryCache) Set(key string, value []byte) {
	mc.add(key, value, time.Now().Add(mc.ttl))
}

// SetImmutable stores a value without an expiry
func (mc *MemoryCache) SetImmutable(key string, value []byte) {
	mc.add(key, value, time.Time{})
}

func (mc *MemoryCache) add(key string, value []byte, expiresAt time.Time) {
	entry := &cacheEntry{
		data:      value,
		expiresAt: expiresAt,
	}

	mc.mu.Lock()
	mc.cache.Add(key, entry)
	mc.mu.Unlock()
}

// Stats returns hit/miss counters since startup
func (mc *MemoryCache) Stats() Stats {
	mc.mu.RLock()
	size := mc.cache.Len()
	mc.mu.RUnlock()

	return Stats{
		Hits:   mc.hits.Load(),
		Misses: mc.misses.Load(),
		Size:   size,
	}
}

// Close stops the cache cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.once.Do(func() { close(mc.stop) })
}

// cleanupLoop periodically removes expired entries
func (mc *MemoryCache) cleanupLoop() {
	interval := mc.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpired()
		case <-mc.stop:
			return
		}
	}
}

// removeExpired removes all expired entries from the cache
func (mc *MemoryCache) removeExpired() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	for _, key := range mc.cache.Keys() {
		entry, ok := mc.cache.Peek(key)
		if ok && entry.expired(now) {
			mc.cache.Remove(key)
		}
	}
}

// NoopCache is a cache that does nothing (used when caching is disabled)
type NoopCache struct{}

// NewNoopCache creates a new no-op cache
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Get always returns not found
func (nc *NoopCache) Get(key string) ([]byte, bool) {
	return nil, false
}

// Set does nothing
func (nc *NoopCache) Set(key string, value []byte) {}

// SetImmutable does nothing
func (nc *NoopCache) SetImmutable(key string, value []byte) {}

// Stats returns zero counters
func (nc *NoopCache) Stats() Stats {
	return Stats{}
}

// Close does nothing
func (nc *NoopCache) Close() {}
