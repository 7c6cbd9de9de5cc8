package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stocksense/backend/internal/domain/forecast"
	"go.uber.org/zap"
)

// TieredViewCache layers the shared redis cache over the local in-memory
// copy. Reads consult redis first so all instances converge on the same
// view; the memory layer answers only when redis is unreachable or cold.
// Redis failures degrade to the local copy instead of erroring out.
type TieredViewCache struct {
	shared forecast.ViewCache
	local  forecast.ViewCache
	logger *zap.Logger

	sharedHits   int64
	sharedMisses int64
	localHits    int64
	localMisses  int64
}

// TieredViewCacheOption is a functional option for configuring the cache
type TieredViewCacheOption func(*TieredViewCache)

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredViewCacheOption {
	return func(c *TieredViewCache) {
		c.logger = logger
	}
}

// NewTieredViewCache creates a new tiered view cache
func NewTieredViewCache(shared, local forecast.ViewCache, opts ...TieredViewCacheOption) *TieredViewCache {
	cache := &TieredViewCache{
		shared: shared,
		local:  local,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get retrieves the view, consulting the shared layer before the local one
func (c *TieredViewCache) Get(ctx context.Context) ([]forecast.MergedItem, error) {
	items, err := c.shared.Get(ctx)
	if err != nil {
		c.logger.Warn("shared view cache read failed", zap.Error(err))
	}
	if items != nil {
		atomic.AddInt64(&c.sharedHits, 1)
		return items, nil
	}
	atomic.AddInt64(&c.sharedMisses, 1)

	items, err = c.local.Get(ctx)
	if err != nil {
		return nil, err
	}
	if items != nil {
		atomic.AddInt64(&c.localHits, 1)
		return items, nil
	}
	atomic.AddInt64(&c.localMisses, 1)
	return nil, nil
}

// Set writes the view to both layers
func (c *TieredViewCache) Set(ctx context.Context, items []forecast.MergedItem, ttl time.Duration) error {
	if err := c.shared.Set(ctx, items, ttl); err != nil {
		c.logger.Warn("shared view cache write failed", zap.Error(err))
	}
	return c.local.Set(ctx, items, ttl)
}

// PatchStock patches both layers; true when either held the item
func (c *TieredViewCache) PatchStock(ctx context.Context, itemID string, stock int) (bool, error) {
	sharedOK, err := c.shared.PatchStock(ctx, itemID, stock)
	if err != nil {
		c.logger.Warn("shared view cache patch failed",
			zap.String("item_id", itemID), zap.Error(err))
	}
	localOK, err := c.local.PatchStock(ctx, itemID, stock)
	if err != nil {
		return sharedOK, err
	}
	return sharedOK || localOK, nil
}

// Invalidate drops the view from both layers
func (c *TieredViewCache) Invalidate(ctx context.Context) error {
	if err := c.shared.Invalidate(ctx); err != nil {
		c.logger.Warn("shared view cache invalidation failed", zap.Error(err))
	}
	return c.local.Invalidate(ctx)
}

// Stats reports hit and miss counters per layer
func (c *TieredViewCache) Stats() (sharedHits, sharedMisses, localHits, localMisses int64) {
	return atomic.LoadInt64(&c.sharedHits),
		atomic.LoadInt64(&c.sharedMisses),
		atomic.LoadInt64(&c.localHits),
		atomic.LoadInt64(&c.localMisses)
}

// Ensure TieredViewCache implements forecast.ViewCache
var _ forecast.ViewCache = (*TieredViewCache)(nil)
