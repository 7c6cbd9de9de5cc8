package persistence

import (
	"context"

	"github.com/stocksense/backend/internal/domain/demand"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFeatureRepository implements demand.FeatureRepository using GORM
type GormFeatureRepository struct {
	db *gorm.DB
}

// NewGormFeatureRepository creates a new GormFeatureRepository
func NewGormFeatureRepository(db *gorm.DB) *GormFeatureRepository {
	return &GormFeatureRepository{db: db}
}

// FindAll retrieves every demand feature row
func (r *GormFeatureRepository) FindAll(ctx context.Context) ([]demand.Feature, error) {
	var features []demand.Feature
	if err := r.db.WithContext(ctx).Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

// UpsertAll writes a batch of features, replacing existing rows per item
func (r *GormFeatureRepository) UpsertAll(ctx context.Context, features []demand.Feature) error {
	if len(features) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"rolling_7d", "rolling_30d", "rolling_60d",
				"daily_demand_final", "demand_std_dev", "updated_at",
			}),
		}).
		Create(&features).Error
}

// Ensure GormFeatureRepository implements demand.FeatureRepository
var _ demand.FeatureRepository = (*GormFeatureRepository)(nil)
