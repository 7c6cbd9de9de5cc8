package persistence

import (
	"context"
	"errors"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormItemRepository) WithTx(tx *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: tx}
}

// FindByID finds an item by its business identifier
func (r *GormItemRepository) FindByID(ctx context.Context, itemID string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).First(&item, "item_id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByName finds an item by exact name. Returns (nil, nil) when no item matches.
func (r *GormItemRepository) FindByName(ctx context.Context, name string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).First(&item, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindAll retrieves every item ordered by identifier
func (r *GormItemRepository) FindAll(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := r.db.WithContext(ctx).Order("item_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindPage retrieves one page of items ordered by identifier
func (r *GormItemRepository) FindPage(ctx context.Context, offset, limit int) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := r.db.WithContext(ctx).
		Order("item_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindRecent retrieves the most recently added items, newest first
func (r *GormItemRepository) FindRecent(ctx context.Context, limit int) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := r.db.WithContext(ctx).
		Order("date_added DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MaxItemIDLexicographic returns the lexicographically greatest item_id,
// or empty string when the table is empty.
func (r *GormItemRepository) MaxItemIDLexicographic(ctx context.Context) (string, error) {
	var item catalog.Item
	err := r.db.WithContext(ctx).
		Select("item_id").
		Order("item_id DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

// MaxItemIDByDateAdded returns the item_id of the most recently added item,
// or empty string when the table is empty.
func (r *GormItemRepository) MaxItemIDByDateAdded(ctx context.Context) (string, error) {
	var item catalog.Item
	err := r.db.WithContext(ctx).
		Select("item_id").
		Order("date_added DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

// Insert creates a new item. A primary key collision maps to
// shared.ErrAlreadyExists so callers can retry with a fresh identifier.
func (r *GormItemRepository) Insert(ctx context.Context, item *catalog.Item) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}},
			DoNothing: true,
		}).
		Create(item)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// Update persists all fields of an existing item
func (r *GormItemRepository) Update(ctx context.Context, item *catalog.Item) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("item_id = ?", item.ItemID).
		Updates(map[string]any{
			"name":                      item.Name,
			"category":                  item.Category,
			"stock_level":               item.StockLevel,
			"unit_price":                item.UnitPrice,
			"holding_cost_per_unit_day": item.HoldingCostPerUnitDay,
			"handling_cost_per_unit":    item.HandlingCostPerUnit,
			"reorder_point":             item.ReorderPoint,
			"reorder_frequency_days":    item.ReorderFrequencyDays,
			"lead_time_days":            item.LeadTimeDays,
			"expiry_date":               item.ExpiryDate,
			"last_restock_date":         item.LastRestockDate,
			"is_active":                 item.IsActive,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecrementStock atomically subtracts quantity from an item's stock,
// clamping at zero, and returns the resulting level. Single UPDATE so
// concurrent sales never drive stock negative.
func (r *GormItemRepository) DecrementStock(ctx context.Context, itemID string, quantity int) (int, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE items
		 SET stock_level = CASE WHEN stock_level >= ? THEN stock_level - ? ELSE 0 END
		 WHERE item_id = ?`,
		quantity, quantity, itemID,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrNotFound
	}

	var item catalog.Item
	if err := r.db.WithContext(ctx).Select("stock_level").First(&item, "item_id = ?", itemID).Error; err != nil {
		return 0, err
	}
	return item.StockLevel, nil
}

// UpdatePopularityScores writes a batch of popularity scores in one transaction
func (r *GormItemRepository) UpdatePopularityScores(ctx context.Context, scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for itemID, score := range scores {
			if err := tx.Model(&catalog.Item{}).
				Where("item_id = ?", itemID).
				Update("item_popularity_score", score).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the total number of items
func (r *GormItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Item{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormItemRepository implements catalog.ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
