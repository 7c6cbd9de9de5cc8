package persistence

import (
	"context"
	"time"

	"github.com/stocksense/backend/internal/domain/forecast"
	"gorm.io/gorm"
)

// GormPredictionRepository implements forecast.PredictionRepository using GORM
type GormPredictionRepository struct {
	db *gorm.DB
}

// NewGormPredictionRepository creates a new GormPredictionRepository
func NewGormPredictionRepository(db *gorm.DB) *GormPredictionRepository {
	return &GormPredictionRepository{db: db}
}

// FindCreatedBetween retrieves prediction rows created within [start, end)
func (r *GormPredictionRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]forecast.Prediction, error) {
	var predictions []forecast.Prediction
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

// InsertBatch persists a batch of prediction rows
func (r *GormPredictionRepository) InsertBatch(ctx context.Context, predictions []forecast.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&predictions, 200).Error
}

// DeleteCreatedBetween removes prediction rows created within [start, end)
func (r *GormPredictionRepository) DeleteCreatedBetween(ctx context.Context, start, end time.Time) error {
	return r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Delete(&forecast.Prediction{}).Error
}

// Ensure GormPredictionRepository implements forecast.PredictionRepository
var _ forecast.PredictionRepository = (*GormPredictionRepository)(nil)
