package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/shared"
)

var saleDay = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

type saleFixture struct {
	itemRepo *MockItemRepository
	saleRepo *MockSaleRepository
	cache    *MockViewCache
	trigger  *MockDemandTrigger
	svc      *Service
	done     chan struct{}
}

func newSaleFixture() *saleFixture {
	f := &saleFixture{
		itemRepo: new(MockItemRepository),
		saleRepo: new(MockSaleRepository),
		cache:    new(MockViewCache),
		trigger:  new(MockDemandTrigger),
		done:     make(chan struct{}, 1),
	}
	f.svc = NewService(f.itemRepo, f.saleRepo, f.cache, f.trigger, nil)
	f.svc.SetClock(func() time.Time { return saleDay })
	f.svc.SetDemandDoneHook(func() { f.done <- struct{}{} })
	return f
}

func (f *saleFixture) waitForDemand(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("demand recompute did not run")
	}
}

func TestRecordSale_FirstOfDay(t *testing.T) {
	f := newSaleFixture()

	item := &catalog.Item{ItemID: "ITM10001", StockLevel: 10}
	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(item, nil)
	f.saleRepo.On("FindByItemAndDate", mock.Anything, "ITM10001", "2026-03-15").Return(nil, nil)

	var inserted *catalog.SaleRecord
	f.saleRepo.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*catalog.SaleRecord)
		}).
		Return(nil)
	f.itemRepo.On("DecrementStock", mock.Anything, "ITM10001", 3).Return(7, nil)
	f.cache.On("PatchStock", mock.Anything, "ITM10001", 7).Return(true, nil)
	f.trigger.On("Recompute", mock.Anything).Return(1, nil)

	result, err := f.svc.RecordSale(context.Background(), "ITM10001", 3)
	require.NoError(t, err)

	assert.Equal(t, "ITM10001", result.ItemID)
	assert.Equal(t, 3, result.QtySold)
	assert.Equal(t, 7, result.NewStock)
	assert.True(t, result.StockUpdated)

	require.NotNil(t, inserted)
	assert.Equal(t, "2026-03-15", inserted.Date)
	assert.Equal(t, 3, inserted.QtySold)

	f.waitForDemand(t)
	f.trigger.AssertExpectations(t)
}

func TestRecordSale_IncrementsExistingRow(t *testing.T) {
	f := newSaleFixture()

	item := &catalog.Item{ItemID: "ITM10001", StockLevel: 10}
	existing := &catalog.SaleRecord{ItemID: "ITM10001", Date: "2026-03-15", QtySold: 4}

	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(item, nil)
	f.saleRepo.On("FindByItemAndDate", mock.Anything, "ITM10001", "2026-03-15").Return(existing, nil)
	f.saleRepo.On("UpdateQty", mock.Anything, existing).Return(nil)
	f.itemRepo.On("DecrementStock", mock.Anything, "ITM10001", 2).Return(8, nil)
	f.cache.On("PatchStock", mock.Anything, "ITM10001", 8).Return(true, nil)
	f.trigger.On("Recompute", mock.Anything).Return(1, nil)

	_, err := f.svc.RecordSale(context.Background(), "ITM10001", 2)
	require.NoError(t, err)

	assert.Equal(t, 6, existing.QtySold)
	f.saleRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.waitForDemand(t)
}

func TestRecordSale_UnknownItem(t *testing.T) {
	f := newSaleFixture()
	f.itemRepo.On("FindByID", mock.Anything, "ITM99999").Return(nil, shared.ErrNotFound)

	_, err := f.svc.RecordSale(context.Background(), "ITM99999", 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.saleRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRecordSale_InvalidQuantity(t *testing.T) {
	f := newSaleFixture()

	_, err := f.svc.RecordSale(context.Background(), "ITM10001", 0)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_QUANTITY", derr.Code)
	f.itemRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestRecordSale_LedgerFailureAborts(t *testing.T) {
	f := newSaleFixture()

	item := &catalog.Item{ItemID: "ITM10001", StockLevel: 10}
	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(item, nil)
	f.saleRepo.On("FindByItemAndDate", mock.Anything, "ITM10001", "2026-03-15").Return(nil, nil)
	f.saleRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("constraint violation"))

	_, err := f.svc.RecordSale(context.Background(), "ITM10001", 1)
	require.Error(t, err)
	f.itemRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSale_DecrementFallback(t *testing.T) {
	f := newSaleFixture()

	item := &catalog.Item{ItemID: "ITM10001", StockLevel: 10}
	fresh := &catalog.Item{ItemID: "ITM10001", StockLevel: 9}

	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(item, nil).Once()
	f.saleRepo.On("FindByItemAndDate", mock.Anything, "ITM10001", "2026-03-15").Return(nil, nil)
	f.saleRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.itemRepo.On("DecrementStock", mock.Anything, "ITM10001", 4).Return(0, errors.New("lock timeout"))
	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(fresh, nil).Once()
	f.itemRepo.On("Update", mock.Anything, fresh).Return(nil)
	f.cache.On("PatchStock", mock.Anything, "ITM10001", 5).Return(true, nil)
	f.trigger.On("Recompute", mock.Anything).Return(1, nil)

	result, err := f.svc.RecordSale(context.Background(), "ITM10001", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, result.NewStock)
	assert.True(t, result.StockUpdated)
	f.waitForDemand(t)
}

func TestRecordSale_StockFailureDegrades(t *testing.T) {
	f := newSaleFixture()

	item := &catalog.Item{ItemID: "ITM10001", StockLevel: 10}
	boom := errors.New("db down")

	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(item, nil).Once()
	f.saleRepo.On("FindByItemAndDate", mock.Anything, "ITM10001", "2026-03-15").Return(nil, nil)
	f.saleRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.itemRepo.On("DecrementStock", mock.Anything, "ITM10001", 1).Return(0, boom)
	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(nil, boom).Once()
	f.trigger.On("Recompute", mock.Anything).Return(0, errors.New("still down"))

	// The ledger write succeeded, so the sale is still recorded.
	result, err := f.svc.RecordSale(context.Background(), "ITM10001", 1)
	require.NoError(t, err)
	assert.Equal(t, -1, result.NewStock)
	assert.False(t, result.StockUpdated)
	f.cache.AssertNotCalled(t, "PatchStock", mock.Anything, mock.Anything, mock.Anything)
	f.waitForDemand(t)
}

func TestRecordSale_CachePatchFailureTolerated(t *testing.T) {
	f := newSaleFixture()

	item := &catalog.Item{ItemID: "ITM10001", StockLevel: 10}
	f.itemRepo.On("FindByID", mock.Anything, "ITM10001").Return(item, nil)
	f.saleRepo.On("FindByItemAndDate", mock.Anything, "ITM10001", "2026-03-15").Return(nil, nil)
	f.saleRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.itemRepo.On("DecrementStock", mock.Anything, "ITM10001", 1).Return(9, nil)
	f.cache.On("PatchStock", mock.Anything, "ITM10001", 9).Return(false, errors.New("redis down"))
	f.trigger.On("Recompute", mock.Anything).Return(1, nil)

	result, err := f.svc.RecordSale(context.Background(), "ITM10001", 1)
	require.NoError(t, err)
	assert.True(t, result.StockUpdated)
	f.waitForDemand(t)
}
