// Package redis provides a Redis-backed cache driver.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/papercomputeco/mnemo/pkg/cache"
)

const (
	// DefaultAddr is the default Redis address.
	DefaultAddr = "localhost:6379"
)

// Cache implements cache.Cache backed by Redis.
type Cache struct {
	client *goredis.Client
	logger *slog.Logger
}

// Config holds configuration for the Redis cache.
type Config struct {
	// Addr is the Redis host:port. Defaults to localhost:6379.
	Addr string

	// Password authenticates against Redis. Optional.
	Password string

	// DB is the Redis database number.
	DB int
}

// NewCache creates a Redis cache client. Connectivity is not verified here;
// use Ping to check reachability.
func NewCache(c Config, logger *slog.Logger) *Cache {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	logger.Info("redis cache initialized",
		"addr", c.Addr,
		"db", c.DB,
	)

	return &Cache{
		client: client,
		logger: logger,
	}
}

// Get returns the value for key. Absent keys return cache.ErrMiss, backend
// failures return cache.ErrUnavailable.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}
	return value, nil
}

// SetWithTTL stores value under key with the given expiry.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}
	return nil
}

// Stats reports keyspace hit and miss counters from the Redis server.
func (c *Cache) Stats(ctx context.Context) (cache.Stats, error) {
	info, err := c.client.Info(ctx, "stats").Result()
	if err != nil {
		return cache.Stats{}, fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}
	return parseStats(info), nil
}

// parseStats extracts keyspace_hits and keyspace_misses from INFO output.
func parseStats(info string) cache.Stats {
	var stats cache.Stats
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "keyspace_hits":
			stats.Hits = n
		case "keyspace_misses":
			stats.Misses = n
		}
	}
	return stats
}

// Ping reports whether the Redis server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ensure Cache implements cache.Cache
var _ cache.Cache = (*Cache)(nil)
