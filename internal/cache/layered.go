package cache

import (
	"errors"
	"time"
)

// LayeredCache reads through memory before disk and promotes disk
// hits back into memory
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache stacks a memory cache in front of a disk cache.
// The memory layer sweeps expired entries every ten minutes.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		c.memory.Set(key, val, 0) // promote with the default TTL
		return val, true
	}

	return nil, false
}

// Set writes to both layers. A failing layer does not stop the other,
// so a read-only cache directory still leaves the memory layer warm.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	return errors.Join(
		c.memory.Set(key, value, ttl),
		c.disk.Set(key, value, ttl),
	)
}

// Delete drops the key from both layers.
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(
		c.memory.Delete(key),
		c.disk.Delete(key),
	)
}

// Clear empties both layers.
func (c *LayeredCache) Clear() error {
	return errors.Join(
		c.memory.Clear(),
		c.disk.Clear(),
	)
}
