package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stocksense/backend/internal/domain/catalog"
)

// Prediction is the external model's forecast for one item on one day.
// One row per item is expected per calendar day; a day with fewer rows
// than items is treated as incomplete and fully regenerated.
type Prediction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ItemID          string    `gorm:"not null;index" json:"item_id"`
	Pred7d          float64   `gorm:"column:pred_7d;not null;default:0" json:"pred_7d"`
	Pred30d         float64   `gorm:"column:pred_30d;not null;default:0" json:"pred_30d"`
	Pred60d         float64   `gorm:"column:pred_60d;not null;default:0" json:"pred_60d"`
	Pred180d        float64   `gorm:"column:pred_180d;not null;default:0" json:"pred_180d"`
	DaysLeft        float64   `gorm:"not null;default:0" json:"days_left"`
	NeedRestock7d   bool      `gorm:"column:need_restock_7d;not null;default:false" json:"need_restock_7d"`
	NeedRestock30d  bool      `gorm:"column:need_restock_30d;not null;default:false" json:"need_restock_30d"`
	NeedRestock60d  bool      `gorm:"column:need_restock_60d;not null;default:false" json:"need_restock_60d"`
	NeedRestock180d bool      `gorm:"column:need_restock_180d;not null;default:false" json:"need_restock_180d"`
	RestockQty7d    float64   `gorm:"column:restock_qty_7d;not null;default:0" json:"restock_qty_7d"`
	RestockQty30d   float64   `gorm:"column:restock_qty_30d;not null;default:0" json:"restock_qty_30d"`
	RestockQty60d   float64   `gorm:"column:restock_qty_60d;not null;default:0" json:"restock_qty_60d"`
	RestockQty180d  float64   `gorm:"column:restock_qty_180d;not null;default:0" json:"restock_qty_180d"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for GORM
func (Prediction) TableName() string {
	return "predictions"
}

// PredictionValues carries the model's outputs for one item
type PredictionValues struct {
	Pred7d          float64
	Pred30d         float64
	Pred60d         float64
	Pred180d        float64
	DaysLeft        float64
	NeedRestock7d   bool
	NeedRestock30d  bool
	NeedRestock60d  bool
	NeedRestock180d bool
	RestockQty7d    float64
	RestockQty30d   float64
	RestockQty60d   float64
	RestockQty180d  float64
}

// NewPrediction builds a day-stamped prediction row from model output
func NewPrediction(itemID string, v PredictionValues) Prediction {
	return Prediction{
		ID:              uuid.New(),
		ItemID:          itemID,
		Pred7d:          v.Pred7d,
		Pred30d:         v.Pred30d,
		Pred60d:         v.Pred60d,
		Pred180d:        v.Pred180d,
		DaysLeft:        v.DaysLeft,
		NeedRestock7d:   v.NeedRestock7d,
		NeedRestock30d:  v.NeedRestock30d,
		NeedRestock60d:  v.NeedRestock60d,
		NeedRestock180d: v.NeedRestock180d,
		RestockQty7d:    v.RestockQty7d,
		RestockQty30d:   v.RestockQty30d,
		RestockQty60d:   v.RestockQty60d,
		RestockQty180d:  v.RestockQty180d,
		CreatedAt:       time.Now(),
	}
}

// PredictionRepository defines the interface for prediction persistence
type PredictionRepository interface {
	// FindCreatedBetween returns predictions created within [start, end)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]Prediction, error)

	// InsertBatch persists a freshly generated prediction set
	InsertBatch(ctx context.Context, predictions []Prediction) error

	// DeleteCreatedBetween removes predictions created within [start, end)
	DeleteCreatedBetween(ctx context.Context, start, end time.Time) error
}

// Predictor is the external demand-prediction service. It receives the
// full item list and returns one prediction per item. A non-success
// response from the service is a hard failure for the caller.
type Predictor interface {
	Predict(ctx context.Context, items []catalog.Item) ([]Prediction, error)
}
