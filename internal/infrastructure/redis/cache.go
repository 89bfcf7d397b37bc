package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache caches rendered list views under a per-entity prefix. Every write
// to an entity invalidates its whole prefix, so readers never see stale lists
// for longer than one write.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListCache{client: client, ttl: ttl}
}

func (c *ListCache) key(prefix, suffix string) string {
	return fmt.Sprintf("cache:%s:%s", prefix, suffix)
}

// Get unmarshals a cached value into dst. The second return is false on miss.
func (c *ListCache) Get(ctx context.Context, prefix, suffix string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(prefix, suffix)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache unmarshal: %w", err)
	}
	return true, nil
}

// Set stores a value under the prefix with the cache TTL.
func (c *ListCache) Set(ctx context.Context, prefix, suffix string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key(prefix, suffix), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// InvalidatePrefix deletes every key cached under the prefix.
func (c *ListCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	pattern := c.key(prefix, "*")
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
