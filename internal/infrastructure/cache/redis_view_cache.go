package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stocksense/backend/internal/domain/forecast"
)

// ViewCacheKey is the single redis key holding the merged prediction view
const ViewCacheKey = "inventory:predictions:full"

// RedisViewCache stores the merged prediction view as one JSON document
// in redis, shared across instances.
type RedisViewCache struct {
	client *redis.Client
}

// NewRedisViewCache creates a new RedisViewCache
func NewRedisViewCache(client *redis.Client) *RedisViewCache {
	return &RedisViewCache{client: client}
}

// Get returns the cached view, or (nil, nil) on a miss
func (c *RedisViewCache) Get(ctx context.Context) ([]forecast.MergedItem, error) {
	data, err := c.client.Get(ctx, ViewCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", ViewCacheKey, err)
	}

	var items []forecast.MergedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cached view: %w", err)
	}
	return items, nil
}

// Set replaces the cached view with the given TTL
func (c *RedisViewCache) Set(ctx context.Context, items []forecast.MergedItem, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := c.client.Set(ctx, ViewCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", ViewCacheKey, err)
	}
	return nil
}

// PatchStock rewrites one item's stock inside the cached document. The
// document is written back with KEEPTTL so the patch never extends the
// entry's lifetime.
func (c *RedisViewCache) PatchStock(ctx context.Context, itemID string, stock int) (bool, error) {
	data, err := c.client.Get(ctx, ViewCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", ViewCacheKey, err)
	}

	var items []forecast.MergedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return false, fmt.Errorf("unmarshal cached view: %w", err)
	}

	patched := false
	for i := range items {
		if items[i].ItemID == itemID {
			items[i].SetStock(stock)
			patched = true
			break
		}
	}
	if !patched {
		return false, nil
	}

	updated, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("marshal view: %w", err)
	}
	if err := c.client.Set(ctx, ViewCacheKey, updated, redis.KeepTTL).Err(); err != nil {
		return false, fmt.Errorf("redis set %s: %w", ViewCacheKey, err)
	}
	return true, nil
}

// Invalidate drops the cached view
func (c *RedisViewCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, ViewCacheKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", ViewCacheKey, err)
	}
	return nil
}

// Ensure RedisViewCache implements forecast.ViewCache
var _ forecast.ViewCache = (*RedisViewCache)(nil)
