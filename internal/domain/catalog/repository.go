package catalog

import (
	"context"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by its identifier
	FindByID(ctx context.Context, itemID string) (*Item, error)

	// FindByName finds an item by its exact name; returns nil when absent
	FindByName(ctx context.Context, name string) (*Item, error)

	// FindAll returns every item
	FindAll(ctx context.Context) ([]Item, error)

	// FindPage returns a page of items ordered by identifier.
	// A short page (fewer than limit rows) signals end-of-data.
	FindPage(ctx context.Context, offset, limit int) ([]Item, error)

	// FindRecent returns the most recently added items, newest first
	FindRecent(ctx context.Context, limit int) ([]Item, error)

	// MaxItemIDLexicographic returns the lexicographically greatest item
	// identifier, or "" when the table is empty
	MaxItemIDLexicographic(ctx context.Context) (string, error)

	// MaxItemIDByDateAdded returns the identifier of the most recently
	// added item, or "" when the table is empty
	MaxItemIDByDateAdded(ctx context.Context) (string, error)

	// Insert creates a new item; a duplicate identifier yields
	// shared.ErrAlreadyExists
	Insert(ctx context.Context, item *Item) error

	// Update persists changes to an existing item
	Update(ctx context.Context, item *Item) error

	// DecrementStock atomically decrements an item's stock level by
	// quantity, clamped at zero, and returns the new stock level
	DecrementStock(ctx context.Context, itemID string, quantity int) (int, error)

	// UpdatePopularityScores sets item_popularity_score for the given items
	UpdatePopularityScores(ctx context.Context, scores map[string]float64) error

	// Count returns the total number of items
	Count(ctx context.Context) (int64, error)
}

// SaleRepository defines the interface for sales-history persistence
type SaleRepository interface {
	// FindByItemAndDate finds the sale record for one item on one day;
	// returns nil when no sale was recorded
	FindByItemAndDate(ctx context.Context, itemID, date string) (*SaleRecord, error)

	// FindSince returns all sale records with date >= since, oldest first
	FindSince(ctx context.Context, since string) ([]SaleRecord, error)

	// Insert creates a new sale record
	Insert(ctx context.Context, record *SaleRecord) error

	// UpdateQty sets the accumulated quantity of an existing sale record
	UpdateQty(ctx context.Context, record *SaleRecord) error
}
