package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/forecast"
	"github.com/stocksense/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// defaultsSampleSize is how many recently added items seed the reorder
// defaults of a brand-new item.
const defaultsSampleSize = 100

// IntakeResult reports what an intake did
type IntakeResult struct {
	Item    *catalog.Item
	Created bool
}

// IntakeService handles receiving stock: restocking known items by name
// and registering new catalog entries with freshly allocated identifiers.
type IntakeService struct {
	itemRepo  catalog.ItemRepository
	viewCache forecast.ViewCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(itemRepo catalog.ItemRepository, viewCache forecast.ViewCache, logger *zap.Logger) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		itemRepo:  itemRepo,
		viewCache: viewCache,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *IntakeService) SetClock(now func() time.Time) {
	s.now = now
}

// IntakeParams describes one stock intake
type IntakeParams struct {
	Name       string
	Category   string
	Quantity   int
	ExpiryDate *time.Time
	Costs      catalog.CostUpdate
}

// Intake receives a quantity of a named product. A known name restocks
// the existing item; an unknown name registers a new one. Either way the
// cached prediction view is invalidated so the next dashboard read sees
// the new stock.
func (s *IntakeService) Intake(ctx context.Context, params IntakeParams) (*IntakeResult, error) {
	if params.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if params.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Intake quantity must be positive")
	}

	existing, err := s.itemRepo.FindByName(ctx, params.Name)
	if err != nil {
		return nil, err
	}

	var result *IntakeResult
	if existing != nil {
		result, err = s.restock(ctx, existing, params)
	} else {
		result, err = s.register(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateView(ctx)
	return result, nil
}

// restock adds stock to a known item and refreshes its reorder parameters
func (s *IntakeService) restock(ctx context.Context, item *catalog.Item, params IntakeParams) (*IntakeResult, error) {
	if err := item.Restock(params.Quantity, s.now()); err != nil {
		return nil, err
	}
	if params.ExpiryDate != nil {
		item.ExpiryDate = params.ExpiryDate
	}
	item.ApplyCosts(params.Costs)
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item restocked",
		zap.String("item_id", item.ItemID),
		zap.Int("quantity", params.Quantity),
		zap.Int("new_stock", item.StockLevel))
	return &IntakeResult{Item: item, Created: false}, nil
}

// register creates a new catalog entry. The identifier is allocated from
// the highest observed suffix; duplicate-key collisions under concurrent
// intake bump the suffix and retry a bounded number of times.
func (s *IntakeService) register(ctx context.Context, params IntakeParams) (*IntakeResult, error) {
	defaults, err := s.sampleDefaults(ctx)
	if err != nil {
		return nil, err
	}

	maxNum, err := s.maxIDNumber(ctx)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < catalog.MaxIDAttempts; attempt++ {
		itemID := catalog.FormatItemID(maxNum + 1 + attempt)
		item, err := catalog.NewItem(itemID, params.Name, params.Category, params.Quantity, defaults, s.now())
		if err != nil {
			return nil, err
		}
		item.ExpiryDate = params.ExpiryDate
		item.ApplyCosts(params.Costs)

		err = s.itemRepo.Insert(ctx, item)
		if err == nil {
			s.logger.Info("item registered",
				zap.String("item_id", itemID),
				zap.String("name", params.Name),
				zap.Int("quantity", params.Quantity))
			return &IntakeResult{Item: item, Created: true}, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Warn("item identifier collision, retrying",
			zap.String("item_id", itemID),
			zap.Int("attempt", attempt+1))
	}

	return nil, shared.ErrIDExhausted
}

// maxIDNumber queries the two identifier orderings concurrently and takes
// the higher suffix. Lexicographic order lags once suffixes gain a digit
// (ITM9999 sorts above ITM10000) which is why date-added is consulted too.
func (s *IntakeService) maxIDNumber(ctx context.Context) (int, error) {
	var (
		wg        sync.WaitGroup
		lexID     string
		latestID  string
		lexErr    error
		latestErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		lexID, lexErr = s.itemRepo.MaxItemIDLexicographic(ctx)
	}()
	go func() {
		defer wg.Done()
		latestID, latestErr = s.itemRepo.MaxItemIDByDateAdded(ctx)
	}()
	wg.Wait()

	if lexErr != nil {
		return 0, lexErr
	}
	if latestErr != nil {
		return 0, latestErr
	}
	return catalog.MaxIDNumber(lexID, latestID), nil
}

// sampleDefaults averages the reorder parameters of recently added items
// so a new entry starts with plausible values instead of zeros
func (s *IntakeService) sampleDefaults(ctx context.Context) (catalog.ItemDefaults, error) {
	recent, err := s.itemRepo.FindRecent(ctx, defaultsSampleSize)
	if err != nil {
		return catalog.ItemDefaults{}, err
	}
	if len(recent) == 0 {
		return catalog.ItemDefaults{PopularityScore: 0.5}, nil
	}

	var (
		sumReorder, sumFreq, sumLead int
		sumScore                     float64
		scoreCount                   int
	)
	for _, item := range recent {
		sumReorder += item.ReorderPoint
		sumFreq += item.ReorderFrequencyDays
		sumLead += item.LeadTimeDays
		if item.ItemPopularityScore != nil {
			sumScore += *item.ItemPopularityScore
			scoreCount++
		}
	}

	n := len(recent)
	defaults := catalog.ItemDefaults{
		ReorderPoint:         sumReorder / n,
		ReorderFrequencyDays: sumFreq / n,
		LeadTimeDays:         sumLead / n,
		PopularityScore:      0.5,
	}
	if scoreCount > 0 {
		defaults.PopularityScore = sumScore / float64(scoreCount)
	}
	return defaults, nil
}

// invalidateView drops the cached prediction view; best effort
func (s *IntakeService) invalidateView(ctx context.Context) {
	if s.viewCache == nil {
		return
	}
	if err := s.viewCache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate cached view after intake", zap.Error(err))
	}
}
