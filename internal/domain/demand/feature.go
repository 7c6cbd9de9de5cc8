package demand

import "time"

// Feature holds the rolling sales statistics derived for one item.
// Rows are recomputed wholesale on every demand-update pass, never
// incrementally.
type Feature struct {
	ItemID           string    `gorm:"primaryKey;column:item_id" json:"item_id"`
	Rolling7d        int       `gorm:"column:rolling_7d;not null;default:0" json:"rolling_7d"`
	Rolling30d       int       `gorm:"column:rolling_30d;not null;default:0" json:"rolling_30d"`
	Rolling60d       int       `gorm:"column:rolling_60d;not null;default:0" json:"rolling_60d"`
	DailyDemandFinal float64   `gorm:"not null;default:0" json:"daily_demand_final"`
	DemandStdDev     float64   `gorm:"not null;default:0" json:"demand_std_dev"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Feature) TableName() string {
	return "demand_features"
}
