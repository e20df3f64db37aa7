// Package repository defines data access interfaces for Brewlog.
package repository

import (
	"context"
	"time"
)

// =============================================================================
// Cache Interface (Redis or in-memory)
// =============================================================================

// Cache defines the interface for caching operations. The primary consumer is
// the session manager, which uses the cache as a TTL-aligned read-through
// store in front of the session repository.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
