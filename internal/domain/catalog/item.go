package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stocksense/backend/internal/domain/shared"
)

// Item represents a stocked product tracked by the store.
// Items are never physically deleted; IsActive is the soft-delete flag.
type Item struct {
	ItemID                string          `gorm:"primaryKey;column:item_id" json:"item_id"`
	Name                  string          `gorm:"not null;index" json:"name"`
	Category              string          `gorm:"not null;default:'General'" json:"category"`
	StockLevel            int             `gorm:"not null;default:0" json:"stock_level"`
	UnitPrice             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	HoldingCostPerUnitDay decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"holding_cost_per_unit_day"`
	HandlingCostPerUnit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"handling_cost_per_unit"`
	ReorderPoint          int             `gorm:"not null;default:0" json:"reorder_point"`
	ReorderFrequencyDays  int             `gorm:"not null;default:0" json:"reorder_frequency_days"`
	LeadTimeDays          int             `gorm:"not null;default:0" json:"lead_time_days"`
	ItemPopularityScore   *float64        `json:"item_popularity_score"`
	ExpiryDate            *time.Time      `json:"expiry_date,omitempty"`
	LastRestockDate       time.Time       `json:"last_restock_date"`
	DateAdded             time.Time       `gorm:"index" json:"date_added"`
	IsActive              bool            `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// ItemDefaults holds the seed values applied to a newly created item.
// They are derived from the mean of recently added items so a brand-new
// catalog entry starts with plausible reorder parameters.
type ItemDefaults struct {
	ReorderPoint         int
	ReorderFrequencyDays int
	LeadTimeDays         int
	PopularityScore      float64
}

// CostUpdate carries the optional price and cost overrides of an intake.
// Nil fields leave the item's current value untouched.
type CostUpdate struct {
	UnitPrice             *decimal.Decimal
	HoldingCostPerUnitDay *decimal.Decimal
	HandlingCostPerUnit   *decimal.Decimal
}

// ApplyCosts overwrites the cost fields present in the update
func (i *Item) ApplyCosts(c CostUpdate) {
	if c.UnitPrice != nil {
		i.UnitPrice = *c.UnitPrice
	}
	if c.HoldingCostPerUnitDay != nil {
		i.HoldingCostPerUnitDay = *c.HoldingCostPerUnitDay
	}
	if c.HandlingCostPerUnit != nil {
		i.HandlingCostPerUnit = *c.HandlingCostPerUnit
	}
}

// NewItem creates a new item with the given identifier and intake values
func NewItem(itemID, name, category string, quantity int, defaults ItemDefaults, now time.Time) (*Item, error) {
	if itemID == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_ID", "Item ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}
	if category == "" {
		category = "General"
	}

	score := defaults.PopularityScore
	return &Item{
		ItemID:               itemID,
		Name:                 name,
		Category:             category,
		StockLevel:           quantity,
		ReorderPoint:         defaults.ReorderPoint,
		ReorderFrequencyDays: defaults.ReorderFrequencyDays,
		LeadTimeDays:         defaults.LeadTimeDays,
		ItemPopularityScore:  &score,
		LastRestockDate:      now,
		DateAdded:            now,
		IsActive:             true,
	}, nil
}

// Restock adds quantity to the stock level and refreshes the reorder
// parameters: the reorder point becomes the stock level observed before
// this restock, and the reorder frequency becomes the number of days
// since the previous restock.
func (i *Item) Restock(quantity int, now time.Time) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	oldStock := i.StockLevel
	if !i.LastRestockDate.IsZero() {
		days := int(now.Sub(i.LastRestockDate).Hours()/24 + 0.5)
		if days > 0 {
			i.ReorderFrequencyDays = days
		}
	}
	i.StockLevel = oldStock + quantity
	i.ReorderPoint = oldStock
	i.LastRestockDate = now
	return nil
}

// ApplySale decrements the stock level by the sold quantity, clamped at
// zero, and returns the new stock level. This is the non-atomic fallback
// path; the repository offers an atomic decrement for the primary path.
func (i *Item) ApplySale(quantity int) int {
	i.StockLevel -= quantity
	if i.StockLevel < 0 {
		i.StockLevel = 0
	}
	return i.StockLevel
}
