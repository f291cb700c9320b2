// Package cache defines the read-through cache used by the retrieval
// pipeline to store serialized search responses.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss indicates the key is not present in the cache.
var ErrMiss = errors.New("cache miss")

// ErrUnavailable indicates the cache backend cannot be reached. Callers
// should treat this as a miss and continue without the cache.
var ErrUnavailable = errors.New("cache unavailable")

// Stats are counters reported by a cache backend.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Cache stores serialized values under string keys with a TTL.
type Cache interface {
	// Get returns the value for key, or ErrMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Stats reports hit and miss counters for the backend.
	Stats(ctx context.Context) (Stats, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}
