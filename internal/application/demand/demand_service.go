package demand

import (
	"context"
	"fmt"
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/demand"
	"go.uber.org/zap"
)

// historyWindowDays is how far back sales are loaded for feature
// computation. The widest rolling window is 60 days.
const historyWindowDays = 60

// Service recomputes the demand features of the whole catalog from the
// sales ledger. It runs synchronously on request and asynchronously
// after each sale.
type Service struct {
	itemRepo    catalog.ItemRepository
	saleRepo    catalog.SaleRepository
	featureRepo demand.FeatureRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new demand Service
func NewService(
	itemRepo catalog.ItemRepository,
	saleRepo catalog.SaleRepository,
	featureRepo demand.FeatureRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		itemRepo:    itemRepo,
		saleRepo:    saleRepo,
		featureRepo: featureRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Recompute rebuilds the feature row of every item from the trailing
// sales history and refreshes popularity scores. It returns the number
// of items processed.
//
// A failure to read items or sales aborts the pass; a failure to write
// popularity scores is logged and swallowed, since features are the
// primary output and scores are derived cosmetics.
func (s *Service) Recompute(ctx context.Context) (int, error) {
	today := s.now()

	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	since := today.AddDate(0, 0, -historyWindowDays).Format(catalog.DayFormat)
	sales, err := s.saleRepo.FindSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("load sales history: %w", err)
	}

	byItem := make(map[string][]catalog.SaleRecord, len(items))
	for _, sale := range sales {
		byItem[sale.ItemID] = append(byItem[sale.ItemID], sale)
	}

	features := make([]demand.Feature, len(items))
	existingScores := make(map[string]*float64, len(items))
	for i, item := range items {
		features[i] = demand.ComputeFeature(item.ItemID, byItem[item.ItemID], today)
		existingScores[item.ItemID] = item.ItemPopularityScore
	}

	if err := s.featureRepo.UpsertAll(ctx, features); err != nil {
		return 0, fmt.Errorf("persist features: %w", err)
	}

	scores := demand.PopularityScores(features, existingScores)
	if err := s.itemRepo.UpdatePopularityScores(ctx, scores); err != nil {
		s.logger.Warn("failed to update popularity scores", zap.Error(err))
	}

	s.logger.Info("demand features recomputed",
		zap.Int("items", len(items)),
		zap.Int("sales_rows", len(sales)))
	return len(items), nil
}
