package forecast

import (
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/demand"
)

// DaysLeftSentinel is reported when stock coverage cannot be estimated:
// no measurable demand and no usable model estimate. Effectively infinite.
const DaysLeftSentinel = 9999

// MergedItem is the cache-only read model: an item overlaid with its
// demand feature and today's prediction, plus the derived coverage fields.
//
// Stock is the canonical normalized count; the legacy stock_level key is
// serialized alongside it so older dashboard readers and the in-place
// sale patch see a consistent value under either name.
type MergedItem struct {
	ItemID               string     `json:"item_id"`
	Name                 string     `json:"name"`
	Category             string     `json:"category"`
	Stock                float64    `json:"stock"`
	StockLevel           float64    `json:"stock_level"`
	UnitPrice            float64    `json:"unit_price"`
	HoldingCostPerUnitDay float64   `json:"holding_cost_per_unit_day"`
	HandlingCostPerUnit  float64    `json:"handling_cost_per_unit"`
	ReorderPoint         int        `json:"reorder_point"`
	ReorderFrequencyDays int        `json:"reorder_frequency_days"`
	LeadTimeDays         int        `json:"lead_time_days"`
	ItemPopularityScore  *float64   `json:"item_popularity_score"`
	ExpiryDate           *time.Time `json:"expiry_date,omitempty"`
	LastRestockDate      time.Time  `json:"last_restock_date"`
	DateAdded            time.Time  `json:"date_added"`
	IsActive             bool       `json:"is_active"`

	Rolling7d        int     `json:"rolling_7d"`
	Rolling30d       int     `json:"rolling_30d"`
	Rolling60d       int     `json:"rolling_60d"`
	DailyDemandFinal float64 `json:"daily_demand_final"`
	DemandStdDev     float64 `json:"demand_std_dev"`

	Pred7d          float64 `json:"pred_7d"`
	Pred30d         float64 `json:"pred_30d"`
	Pred60d         float64 `json:"pred_60d"`
	Pred180d        float64 `json:"pred_180d"`
	DaysLeft        float64 `json:"days_left"`
	NeedRestock7d   bool    `json:"need_restock_7d"`
	NeedRestock30d  bool    `json:"need_restock_30d"`
	NeedRestock60d  bool    `json:"need_restock_60d"`
	NeedRestock180d bool    `json:"need_restock_180d"`
	RestockQty7d    float64 `json:"restock_qty_7d"`
	RestockQty30d   float64 `json:"restock_qty_30d"`
	RestockQty60d   float64 `json:"restock_qty_60d"`
	RestockQty180d  float64 `json:"restock_qty_180d"`
}

// Merge combines one item with its demand feature and prediction, either
// of which may be nil, and computes the derived coverage fields:
//
//   - daily demand prefers the feature's estimate when positive, else the
//     model's 30-day total divided by 30;
//   - days-left is stock over daily demand when demand is positive, else
//     the prediction's own days-left when available, else the sentinel.
func Merge(item catalog.Item, feat *demand.Feature, pred *Prediction) MergedItem {
	stock := float64(item.StockLevel)

	m := MergedItem{
		ItemID:                item.ItemID,
		Name:                  item.Name,
		Category:              item.Category,
		Stock:                 stock,
		StockLevel:            stock,
		UnitPrice:             item.UnitPrice.InexactFloat64(),
		HoldingCostPerUnitDay: item.HoldingCostPerUnitDay.InexactFloat64(),
		HandlingCostPerUnit:   item.HandlingCostPerUnit.InexactFloat64(),
		ReorderPoint:          item.ReorderPoint,
		ReorderFrequencyDays:  item.ReorderFrequencyDays,
		LeadTimeDays:          item.LeadTimeDays,
		ItemPopularityScore:   item.ItemPopularityScore,
		ExpiryDate:            item.ExpiryDate,
		LastRestockDate:       item.LastRestockDate,
		DateAdded:             item.DateAdded,
		IsActive:              item.IsActive,
	}

	if feat != nil {
		m.Rolling7d = feat.Rolling7d
		m.Rolling30d = feat.Rolling30d
		m.Rolling60d = feat.Rolling60d
		m.DailyDemandFinal = feat.DailyDemandFinal
		m.DemandStdDev = feat.DemandStdDev
	}

	if pred != nil {
		m.Pred7d = pred.Pred7d
		m.Pred30d = pred.Pred30d
		m.Pred60d = pred.Pred60d
		m.Pred180d = pred.Pred180d
		m.NeedRestock7d = pred.NeedRestock7d
		m.NeedRestock30d = pred.NeedRestock30d
		m.NeedRestock60d = pred.NeedRestock60d
		m.NeedRestock180d = pred.NeedRestock180d
		m.RestockQty7d = pred.RestockQty7d
		m.RestockQty30d = pred.RestockQty30d
		m.RestockQty60d = pred.RestockQty60d
		m.RestockQty180d = pred.RestockQty180d
	}

	daily := m.DailyDemandFinal
	if daily <= 0 && pred != nil {
		daily = pred.Pred30d / 30
	}

	switch {
	case daily > 0:
		m.DaysLeft = stock / daily
	case pred != nil && pred.DaysLeft > 0:
		m.DaysLeft = pred.DaysLeft
	default:
		m.DaysLeft = DaysLeftSentinel
	}

	return m
}

// SetStock updates both stock fields in place. Used by the best-effort
// cache patch after a sale.
func (m *MergedItem) SetStock(stock int) {
	m.Stock = float64(stock)
	m.StockLevel = float64(stock)
}
