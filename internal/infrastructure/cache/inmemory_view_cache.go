package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stocksense/backend/internal/domain/forecast"
)

// InMemoryViewCache holds the merged prediction view in process memory.
// A single entry with its own expiry, guarded by a RWMutex.
type InMemoryViewCache struct {
	mu        sync.RWMutex
	items     []forecast.MergedItem
	expiresAt time.Time
}

// NewInMemoryViewCache creates an empty in-memory view cache
func NewInMemoryViewCache() *InMemoryViewCache {
	return &InMemoryViewCache{}
}

// Get returns the cached view, or (nil, nil) when empty or expired
func (c *InMemoryViewCache) Get(_ context.Context) ([]forecast.MergedItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.items == nil || time.Now().After(c.expiresAt) {
		return nil, nil
	}
	out := make([]forecast.MergedItem, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Set replaces the cached view and restarts its TTL
func (c *InMemoryViewCache) Set(_ context.Context, items []forecast.MergedItem, ttl time.Duration) error {
	stored := make([]forecast.MergedItem, len(items))
	copy(stored, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = stored
	c.expiresAt = time.Now().Add(ttl)
	return nil
}

// PatchStock rewrites one item's stock in place. The entry's expiry is
// left untouched so a patch never extends the view's lifetime.
func (c *InMemoryViewCache) PatchStock(_ context.Context, itemID string, stock int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil || time.Now().After(c.expiresAt) {
		return false, nil
	}
	for i := range c.items {
		if c.items[i].ItemID == itemID {
			c.items[i].SetStock(stock)
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached view
func (c *InMemoryViewCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.expiresAt = time.Time{}
	return nil
}

// Ensure InMemoryViewCache implements forecast.ViewCache
var _ forecast.ViewCache = (*InMemoryViewCache)(nil)
