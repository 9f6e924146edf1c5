package repository

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// Cache Interface (Redis / in-memory)
// =============================================================================

// Cache defines the interface for caching operations.
// Implemented by Redis for deployments and an in-memory store for tests
// and single-node setups.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX sets a value only if the key doesn't exist.
	// Returns true if the value was set, false if the key already exists.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes all values whose key starts with prefix.
	// Used for coarse invalidation of listing caches.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets or updates the TTL for a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining TTL for a key.
	// Returns -1 if the key doesn't exist, -2 if no TTL is set.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// =============================================================================
// Common Cache Keys
// =============================================================================

// CacheKey generates cache keys for common scenarios.
type CacheKey struct{}

// Blog returns a cache key for a blog post by slug.
func (CacheKey) Blog(slug string) string {
	return "cache:blog:" + slug
}

// BlogList returns a cache key for the full blog listing.
func (CacheKey) BlogList() string {
	return "cache:blogs:all"
}

// BlogPage returns a cache key for a paginated blog listing.
func (CacheKey) BlogPage(offset, limit int) string {
	return fmt.Sprintf("cache:blogs:page:%d:%d", offset, limit)
}

// BlogPrefix returns the shared prefix of all blog cache keys.
func (CacheKey) BlogPrefix() string {
	return "cache:blog"
}

// Categories returns a cache key for the category listing.
func (CacheKey) Categories() string {
	return "cache:categories"
}

// Tags returns a cache key for the tag listing.
func (CacheKey) Tags() string {
	return "cache:tags"
}
