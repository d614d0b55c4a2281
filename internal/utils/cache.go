package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem wraps a cached value with its expiry.
type cacheItem struct {
	data      any
	expiresAt time.Time
}

// Cache is a bounded in-process LRU with per-entry TTL.
type Cache struct {
	lru *lru.Cache[string, cacheItem]
	now func() time.Time
}

// NewCache returns a cache holding at most size entries.
func NewCache(size int) (*Cache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, now: time.Now}, nil
}

// Set stores data under key for ttl.
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.lru.Add(key, cacheItem{data: data, expiresAt: c.now().Add(ttl)})
}

// Get returns the value for key, or nil when missing or expired.
func (c *Cache) Get(key string) any {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if c.now().After(val.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return val.data
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}
