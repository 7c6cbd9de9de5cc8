package sales

import (
	"context"
	"errors"
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/forecast"
	"github.com/stocksense/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// demandTriggerTimeout bounds the detached feature-update pass kicked
// off after each sale.
const demandTriggerTimeout = 2 * time.Minute

// DemandTrigger kicks off a demand-feature recomputation. Satisfied by
// the demand application service.
type DemandTrigger interface {
	Recompute(ctx context.Context) (int, error)
}

// RecordSaleResult reports what a recorded sale did to stock
type RecordSaleResult struct {
	ItemID       string
	QtySold      int
	NewStock     int
	StockUpdated bool
}

// Service records sales into the daily ledger and keeps the stock level
// and cached prediction view in step.
type Service struct {
	itemRepo      catalog.ItemRepository
	saleRepo      catalog.SaleRepository
	viewCache     forecast.ViewCache
	demandTrigger DemandTrigger
	logger        *zap.Logger
	now           func() time.Time

	// onDemandDone is signalled after the detached demand pass finishes.
	// Nil outside tests.
	onDemandDone func()
}

// NewService creates a new sales Service
func NewService(
	itemRepo catalog.ItemRepository,
	saleRepo catalog.SaleRepository,
	viewCache forecast.ViewCache,
	demandTrigger DemandTrigger,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		itemRepo:      itemRepo,
		saleRepo:      saleRepo,
		viewCache:     viewCache,
		demandTrigger: demandTrigger,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetDemandDoneHook registers a callback fired when the detached demand
// pass completes. Intended for tests.
func (s *Service) SetDemandDoneHook(fn func()) {
	s.onDemandDone = fn
}

// RecordSale appends a sale to the daily ledger and decrements stock.
//
// The ledger keeps one row per item per day: the first sale inserts it,
// later sales increment its quantity. Stock is decremented atomically,
// clamped at zero; when the atomic path fails the item is re-read and
// updated with the same clamping. The cached prediction view gets a
// best-effort in-place stock patch, and a demand recomputation is kicked
// off in the background. Ledger failures abort the call; stock and cache
// failures degrade, reported through StockUpdated.
func (s *Service) RecordSale(ctx context.Context, itemID string, quantity int) (*RecordSaleResult, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Sale quantity must be positive")
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	if err := s.appendToLedger(ctx, itemID, today, quantity); err != nil {
		return nil, err
	}

	result := &RecordSaleResult{ItemID: itemID, QtySold: quantity, NewStock: -1}

	newStock, err := s.itemRepo.DecrementStock(ctx, itemID, quantity)
	if err != nil {
		s.logger.Warn("atomic stock decrement failed, falling back to read-modify-write",
			zap.String("item_id", itemID), zap.Error(err))
		newStock, err = s.decrementFallback(ctx, item, quantity)
	}
	if err != nil {
		s.logger.Error("stock level not updated for sale",
			zap.String("item_id", itemID), zap.Error(err))
	} else {
		result.NewStock = newStock
		result.StockUpdated = true
		s.patchCachedView(ctx, itemID, newStock)
	}

	s.triggerDemandUpdate()

	return result, nil
}

// appendToLedger inserts or increments today's row for the item
func (s *Service) appendToLedger(ctx context.Context, itemID string, today time.Time, quantity int) error {
	day := today.Format(catalog.DayFormat)
	existing, err := s.saleRepo.FindByItemAndDate(ctx, itemID, day)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.QtySold += quantity
		return s.saleRepo.UpdateQty(ctx, existing)
	}

	record, err := catalog.NewSaleRecord(itemID, today, quantity)
	if err != nil {
		return err
	}
	return s.saleRepo.Insert(ctx, record)
}

// decrementFallback re-reads the item and applies the sale with the
// same clamp-at-zero semantics as the atomic path
func (s *Service) decrementFallback(ctx context.Context, item *catalog.Item, quantity int) (int, error) {
	fresh, err := s.itemRepo.FindByID(ctx, item.ItemID)
	if err != nil {
		return 0, err
	}
	newStock := fresh.ApplySale(quantity)
	if err := s.itemRepo.Update(ctx, fresh); err != nil {
		return 0, err
	}
	return newStock, nil
}

// patchCachedView updates the item's stock inside the cached prediction
// view so dashboards reflect the sale before the next rebuild. Failures
// only cost freshness, never correctness.
func (s *Service) patchCachedView(ctx context.Context, itemID string, newStock int) {
	if s.viewCache == nil {
		return
	}
	patched, err := s.viewCache.PatchStock(ctx, itemID, newStock)
	if err != nil {
		s.logger.Warn("failed to patch cached view after sale",
			zap.String("item_id", itemID), zap.Error(err))
		return
	}
	if !patched {
		s.logger.Debug("cached view not present, skipping stock patch",
			zap.String("item_id", itemID))
	}
}

// triggerDemandUpdate recomputes demand features in a detached goroutine.
// The sale response never waits on it and its errors are log-only.
func (s *Service) triggerDemandUpdate() {
	if s.demandTrigger == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), demandTriggerTimeout)
		defer cancel()
		if _, err := s.demandTrigger.Recompute(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("post-sale demand update failed", zap.Error(err))
		}
		if s.onDemandDone != nil {
			s.onDemandDone()
		}
	}()
}
