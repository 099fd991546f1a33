package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "leaveledger:cache:"

// Cache implements usecase.Cache using Redis. Balance snapshots are the main
// tenant; writers invalidate after every committed mutation.
type Cache struct {
	client *redis.Client
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) key(k string) string {
	return cachePrefix + k
}

// Get retrieves a value by key. A miss surfaces as redis.Nil.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.key(key)).Result()
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
