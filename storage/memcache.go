package storage

import (
	"sync"
	"time"
)

// CacheItem represents a cached item with its expiration time.
type CacheItem[V any] struct {
	Value      V
	Expiration time.Time
}

// MemoryCache is a generic in-memory cache with TTL support.
type MemoryCache[K comparable, V any] struct {
	cache    map[K]*CacheItem[V]
	ttl      time.Duration
	mutex    sync.RWMutex
	closeCh  chan struct{}
	closeWg  sync.WaitGroup
	isClosed bool
}

// NewMemoryCache creates a new MemoryCache instance; ttl of 0 means no expiration.
func NewMemoryCache[K comparable, V any](ttl time.Duration) *MemoryCache[K, V] {
	c := &MemoryCache[K, V]{
		cache:   make(map[K]*CacheItem[V]),
		ttl:     ttl,
		closeCh: make(chan struct{}),
	}
	if ttl > 0 {
		c.closeWg.Add(1)
		go c.cleanup()
	}
	return c
}

// Get retrieves an unexpired item from the cache
func (c *MemoryCache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if item, ok := c.cache[key]; ok {
		if c.ttl == 0 || time.Now().Before(item.Expiration) {
			return item.Value, true
		}
	}
	var emptyValue V
	return emptyValue, false
}

// Set adds or updates an item in the cache.
func (c *MemoryCache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	expiration := time.Time{}
	if c.ttl > 0 {
		expiration = time.Now().Add(c.ttl)
	}
	c.cache[key] = &CacheItem[V]{Value: value, Expiration: expiration}
}

// Delete removes an item from the cache.
func (c *MemoryCache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.cache, key)
}

// Purge removes every item
func (c *MemoryCache[K, V]) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache = make(map[K]*CacheItem[V])
}

func (c *MemoryCache[K, V]) cleanup() {
	ticker := time.NewTicker(c.ttl / 2)
	defer ticker.Stop()
	defer c.closeWg.Done()
	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now()
			for key, item := range c.cache {
				if now.After(item.Expiration) {
					delete(c.cache, key)
				}
			}
			c.mutex.Unlock()
		case <-c.closeCh:
			return
		}
	}
}

// Close stops the expiry sweeper; the cache stays usable
func (c *MemoryCache[K, V]) Close() {
	c.mutex.Lock()
	if c.ttl <= 0 || c.isClosed {
		c.mutex.Unlock()
		return
	}
	c.isClosed = true
	c.mutex.Unlock()
	close(c.closeCh)
	c.closeWg.Wait()
}
