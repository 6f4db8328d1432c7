package main

import (
	"sync"
	"time"
)

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Key       string
	Value     interface{}
	ExpireAt  time.Time
	CreatedAt time.Time
}

func (i *CacheItem) expired(now time.Time) bool {
	return !i.ExpireAt.IsZero() && now.After(i.ExpireAt)
}

// Cache is an in-memory cache with expiration. A TTL of zero or less keeps
// the item until it is replaced or deleted.
type Cache struct {
	items      map[string]*CacheItem
	mutex      sync.RWMutex
	maxItems   int
	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewCache creates a new cache and starts its cleanup routine
func NewCache(defaultTTL time.Duration, maxItems int) *Cache {
	cache := &Cache{
		items:      make(map[string]*CacheItem),
		maxItems:   maxItems,
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}

	go cache.startCleanupRoutine()
	return cache
}

// Set adds an item to the cache with default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL adds an item to the cache with specified TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	item := &CacheItem{
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
	if ttl > 0 {
		item.ExpireAt = now.Add(ttl)
	}
	c.items[key] = item

	if c.maxItems > 0 && len(c.items) > c.maxItems {
		c.evictOldest()
	}
}

// Get retrieves an item from the cache
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.items[key]
	if !exists || item.expired(time.Now()) {
		return nil, false
	}
	return item.Value, true
}

// GetOrSet gets an item or sets it if not found
func (c *Cache) GetOrSet(key string, valueFunc func() interface{}) interface{} {
	if value, found := c.Get(key); found {
		return value
	}

	value := valueFunc()
	c.Set(key, value)
	return value
}

// Delete removes an item from the cache
func (c *Cache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// Len returns the number of stored items, expired or not
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}

// Close stops the cleanup routine
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// evictOldest removes the oldest item. Caller holds the lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.CreatedAt.Before(oldest) {
			oldestKey = key
			oldest = item.CreatedAt
		}
	}
	delete(c.items, oldestKey)
}

func (c *Cache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
		}
	}
}

func (c *Cache) startCleanupRoutine() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}
