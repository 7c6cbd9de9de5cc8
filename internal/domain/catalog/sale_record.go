package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/stocksense/backend/internal/domain/shared"
)

// DayFormat is the day-granularity date layout used by the sales ledger.
// ISO dates compare correctly as strings, which the rolling-window math
// relies on.
const DayFormat = "2006-01-02"

// SaleRecord accumulates all sales of one item on one calendar day.
// The first sale of the day inserts the row; subsequent same-day sales
// increment QtySold. Once the day rolls over the row is never touched again.
type SaleRecord struct {
	SaleID  uuid.UUID `gorm:"type:uuid;primaryKey;column:sale_id" json:"sale_id"`
	ItemID  string    `gorm:"not null;uniqueIndex:idx_sales_item_date,priority:1" json:"item_id"`
	Date    string    `gorm:"not null;uniqueIndex:idx_sales_item_date,priority:2" json:"date"`
	QtySold int       `gorm:"not null" json:"qty_sold"`
}

// TableName returns the table name for GORM
func (SaleRecord) TableName() string {
	return "sales_history"
}

// NewSaleRecord creates the first sale record of an item for a given day
func NewSaleRecord(itemID string, day time.Time, quantity int) (*SaleRecord, error) {
	if itemID == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_ID", "Item ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Sale quantity must be positive")
	}
	return &SaleRecord{
		SaleID:  uuid.New(),
		ItemID:  itemID,
		Date:    day.Format(DayFormat),
		QtySold: quantity,
	}, nil
}
