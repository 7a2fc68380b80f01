package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage contract shared by the memory, disk and
// layered implementations.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(key string) ([]byte, bool)
	// Set stores a value; a zero ttl uses the implementation default.
	Set(key string, value []byte, ttl time.Duration) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
	// Clear drops every entry.
	Clear() error
}

// Key derives a stable cache key from a record source (file path or URL)
func Key(source string) string {
	hash := sha256.Sum256([]byte(source))
	return "provenance:v1:" + hex.EncodeToString(hash[:])
}
