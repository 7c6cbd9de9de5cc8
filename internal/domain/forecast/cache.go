package forecast

import (
	"context"
	"time"
)

// ViewCache stores the fully merged dashboard view under a single key.
//
// Get returns (nil, nil) on a clean miss so callers can fall through to
// the next layer or a rebuild without error branching.
type ViewCache interface {
	Get(ctx context.Context) ([]MergedItem, error)
	Set(ctx context.Context, items []MergedItem, ttl time.Duration) error
	// PatchStock rewrites one item's stock inside the cached view without
	// resetting the entry's TTL. Returns false when the view or the item
	// is not cached.
	PatchStock(ctx context.Context, itemID string, stock int) (bool, error)
	Invalidate(ctx context.Context) error
}
