// Package cache provides a TTL cache for immutable on-chain metadata.
package cache

import "time"

// Cache is the interface for caching token metadata.
// Quotes must never go through it: they change every block.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL. It may be rejected by the admission policy.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()

	// Close closes the cache and releases resources.
	Close()
}
