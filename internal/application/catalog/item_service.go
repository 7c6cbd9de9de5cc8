package catalog

import (
	"context"

	"github.com/stocksense/backend/internal/domain/catalog"
)

// ItemListResult is one page of catalog items plus totals
type ItemListResult struct {
	Items      []catalog.Item
	Page       int
	Limit      int
	TotalItems int64
}

// ItemService answers read-only catalog queries
type ItemService struct {
	itemRepo catalog.ItemRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// List returns one page of items ordered by identifier
func (s *ItemService) List(ctx context.Context, page, limit int) (*ItemListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	items, err := s.itemRepo.FindPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.itemRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &ItemListResult{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalItems: total,
	}, nil
}

// Get returns one item by identifier
func (s *ItemService) Get(ctx context.Context, itemID string) (*catalog.Item, error) {
	return s.itemRepo.FindByID(ctx, itemID)
}
