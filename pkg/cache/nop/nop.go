// Package nop provides a no-op cache used when caching is disabled.
package nop

import (
	"context"
	"time"

	"github.com/papercomputeco/mnemo/pkg/cache"
)

// Cache is a cache that stores nothing. Every Get is a miss.
type Cache struct{}

// NewCache creates a new no-op cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get always returns cache.ErrMiss.
func (c *Cache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, cache.ErrMiss
}

// SetWithTTL discards the value.
func (c *Cache) SetWithTTL(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

// Stats reports zero counters.
func (c *Cache) Stats(_ context.Context) (cache.Stats, error) {
	return cache.Stats{}, nil
}

// Ping is a no-op.
func (c *Cache) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (c *Cache) Close() error {
	return nil
}

// Ensure Cache implements cache.Cache
var _ cache.Cache = (*Cache)(nil)
