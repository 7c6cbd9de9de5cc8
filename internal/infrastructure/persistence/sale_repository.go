package persistence

import (
	"context"
	"errors"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSaleRepository implements catalog.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormSaleRepository) WithTx(tx *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: tx}
}

// FindByItemAndDate finds the sales row for one item on one calendar day.
// Returns (nil, nil) when no sale has been recorded yet.
func (r *GormSaleRepository) FindByItemAndDate(ctx context.Context, itemID, date string) (*catalog.SaleRecord, error) {
	var record catalog.SaleRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND date = ?", itemID, date).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindSince retrieves all sales on or after the given day, oldest first
func (r *GormSaleRepository) FindSince(ctx context.Context, since string) ([]catalog.SaleRecord, error) {
	var records []catalog.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("date >= ?", since).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Insert creates a new daily sales row
func (r *GormSaleRepository) Insert(ctx context.Context, record *catalog.SaleRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateQty persists the accumulated quantity of an existing sales row
func (r *GormSaleRepository) UpdateQty(ctx context.Context, record *catalog.SaleRecord) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.SaleRecord{}).
		Where("sale_id = ?", record.SaleID).
		Update("qty_sold", record.QtySold)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSaleRepository implements catalog.SaleRepository
var _ catalog.SaleRepository = (*GormSaleRepository)(nil)
