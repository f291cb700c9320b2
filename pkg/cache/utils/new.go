// Package cacheutils provides helpers for constructing caches from
// configuration.
package cacheutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/mnemo/pkg/cache"
	"github.com/papercomputeco/mnemo/pkg/cache/nop"
	"github.com/papercomputeco/mnemo/pkg/cache/redis"
)

// NewCacheOpts are the options to create a new cache.
type NewCacheOpts struct {
	// ProviderType selects the cache implementation, "redis" or "none".
	ProviderType string

	// Addr is the cache backend address (redis).
	Addr string

	// Password authenticates against the backend (redis).
	Password string

	// DB is the backend database number (redis).
	DB int
}

// NewCache creates a cache for the configured provider.
func NewCache(opts *NewCacheOpts, logger *slog.Logger) (cache.Cache, error) {
	switch opts.ProviderType {
	case "redis":
		return redis.NewCache(redis.Config{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}, logger), nil
	case "none", "":
		return nop.NewCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", opts.ProviderType)
	}
}
