package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/demand"
	"github.com/stocksense/backend/internal/domain/forecast"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service coordinates the merged prediction view: cache lookups, daily
// prediction generation through the external model, and the merge of
// items, demand features and predictions into the dashboard read model.
type Service struct {
	itemRepo       catalog.ItemRepository
	featureRepo    demand.FeatureRepository
	predictionRepo forecast.PredictionRepository
	predictor      forecast.Predictor
	viewCache      forecast.ViewCache
	cacheTTL       time.Duration
	batchSize      int
	logger         *zap.Logger
	now            func() time.Time

	// rebuilds of the full view are deduplicated so a cold cache under
	// concurrent load produces one model call, not one per request
	group singleflight.Group
}

// Config holds forecast service tuning
type Config struct {
	CacheTTL  time.Duration
	BatchSize int
}

// NewService creates a new forecast Service
func NewService(
	itemRepo catalog.ItemRepository,
	featureRepo demand.FeatureRepository,
	predictionRepo forecast.PredictionRepository,
	predictor forecast.Predictor,
	viewCache forecast.ViewCache,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		itemRepo:       itemRepo,
		featureRepo:    featureRepo,
		predictionRepo: predictionRepo,
		predictor:      predictor,
		viewCache:      viewCache,
		cacheTTL:       cfg.CacheTTL,
		batchSize:      cfg.BatchSize,
		logger:         logger,
		now:            time.Now,
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// QueryParams selects a page of the merged view
type QueryParams struct {
	Page         int
	Limit        int
	Filter       forecast.Horizon
	ForceRefresh bool
}

// QueryResult is one page of the merged view plus pagination totals
type QueryResult struct {
	Items      []forecast.MergedItem
	Page       int
	Limit      int
	TotalItems int
	TotalPages int
}

// Query returns one filtered, ranked page of the merged prediction view
func (s *Service) Query(ctx context.Context, params QueryParams) (*QueryResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 50
	}
	if params.Filter == "" {
		params.Filter = forecast.HorizonAll
	}

	view, err := s.MergedView(ctx, params.ForceRefresh)
	if err != nil {
		return nil, err
	}

	filtered := forecast.FilterByHorizon(view, params.Filter)
	forecast.SortByRestockQty(filtered, params.Filter)
	pageItems, totalItems, totalPages := forecast.Paginate(filtered, params.Page, params.Limit)

	return &QueryResult{
		Items:      pageItems,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// MergedView returns the full merged view, serving from cache unless
// force is set or the cache is cold. Rebuilds are deduplicated across
// concurrent callers.
func (s *Service) MergedView(ctx context.Context, force bool) ([]forecast.MergedItem, error) {
	if !force {
		cached, err := s.viewCache.Get(ctx)
		if err != nil {
			s.logger.Warn("view cache read failed", zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	key := "rebuild"
	if force {
		key = "rebuild-force"
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.rebuild(ctx, force)
	})
	if err != nil {
		return nil, err
	}

	// Every waiter on the flight receives the same slice; Query sorts in
	// place, so each caller gets its own copy.
	built := v.([]forecast.MergedItem)
	view := make([]forecast.MergedItem, len(built))
	copy(view, built)
	return view, nil
}

// Invalidate drops the cached view so the next read rebuilds it
func (s *Service) Invalidate(ctx context.Context) error {
	return s.viewCache.Invalidate(ctx)
}

// rebuild assembles the view from scratch: items, features, today's
// predictions (generated through the model when missing or forced), then
// a per-item merge. The finished view is written back to the cache.
func (s *Service) rebuild(ctx context.Context, force bool) ([]forecast.MergedItem, error) {
	start := s.now()

	items, err := s.loadAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if len(items) == 0 {
		empty := []forecast.MergedItem{}
		if err := s.viewCache.Set(ctx, empty, s.cacheTTL); err != nil {
			s.logger.Warn("view cache write failed", zap.Error(err))
		}
		return empty, nil
	}

	features, err := s.featureRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load demand features: %w", err)
	}
	featureByID := make(map[string]*demand.Feature, len(features))
	for i := range features {
		featureByID[features[i].ItemID] = &features[i]
	}

	predictions, err := s.todaysPredictions(ctx, items, force)
	if err != nil {
		return nil, err
	}
	predByID := make(map[string]*forecast.Prediction, len(predictions))
	for i := range predictions {
		predByID[predictions[i].ItemID] = &predictions[i]
	}

	view := make([]forecast.MergedItem, len(items))
	for i, item := range items {
		view[i] = forecast.Merge(item, featureByID[item.ItemID], predByID[item.ItemID])
	}

	if err := s.viewCache.Set(ctx, view, s.cacheTTL); err != nil {
		s.logger.Warn("view cache write failed", zap.Error(err))
	}

	s.logger.Info("merged view rebuilt",
		zap.Int("items", len(items)),
		zap.Int("predictions", len(predictions)),
		zap.Bool("forced", force),
		zap.Duration("took", time.Since(start)))
	return view, nil
}

// loadAllItems pages through the items table in fixed-size batches
func (s *Service) loadAllItems(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.itemRepo.FindPage(ctx, offset, s.batchSize)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
		if len(batch) < s.batchSize {
			return items, nil
		}
	}
}

// todaysPredictions returns the persisted prediction set for today,
// regenerating it through the model when it is missing, incomplete, or a
// forced refresh was requested. A set with fewer rows than items counts
// as incomplete and is regenerated wholesale.
func (s *Service) todaysPredictions(ctx context.Context, items []catalog.Item, force bool) ([]forecast.Prediction, error) {
	dayStart, dayEnd := s.todayBounds()

	if force {
		if err := s.predictionRepo.DeleteCreatedBetween(ctx, dayStart, dayEnd); err != nil {
			s.logger.Warn("failed to clear today's predictions for forced refresh", zap.Error(err))
		}
	} else {
		existing, err := s.predictionRepo.FindCreatedBetween(ctx, dayStart, dayEnd)
		if err != nil {
			s.logger.Warn("failed to load today's predictions, regenerating", zap.Error(err))
		} else if len(existing) >= len(items) {
			return existing, nil
		}
	}

	predictions, err := s.predictor.Predict(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("prediction model: %w", err)
	}

	// Persistence failures are log-only; the freshly generated set
	// still serves this rebuild.
	if err := s.predictionRepo.DeleteCreatedBetween(ctx, dayStart, dayEnd); err != nil {
		s.logger.Warn("failed to clear stale predictions", zap.Error(err))
	}
	if err := s.predictionRepo.InsertBatch(ctx, predictions); err != nil {
		s.logger.Warn("failed to persist predictions", zap.Error(err))
	}

	return predictions, nil
}

// todayBounds returns [midnight today, midnight tomorrow)
func (s *Service) todayBounds() (time.Time, time.Time) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dayStart, dayStart.AddDate(0, 0, 1)
}
