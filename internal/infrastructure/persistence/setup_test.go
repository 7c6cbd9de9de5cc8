package persistence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/demand"
	"github.com/stocksense/backend/internal/domain/forecast"
)

// openTestDB opens a fresh in-memory SQLite database with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalog.Item{},
		&catalog.SaleRecord{},
		&demand.Feature{},
		&forecast.Prediction{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustInsertItem(t *testing.T, db *gorm.DB, itemID, name string, stock int, dateAdded time.Time) *catalog.Item {
	t.Helper()
	item := &catalog.Item{
		ItemID:     itemID,
		Name:       name,
		Category:   "General",
		StockLevel: stock,
		DateAdded:  dateAdded,
		IsActive:   true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
