package forecast

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/demand"
	"github.com/stocksense/backend/internal/domain/forecast"
)

// MockItemRepository implements catalog.ItemRepository for testing
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, itemID string) (*catalog.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByName(ctx context.Context, name string) (*catalog.Item, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context) ([]catalog.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindPage(ctx context.Context, offset, limit int) ([]catalog.Item, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindRecent(ctx context.Context, limit int) ([]catalog.Item, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) MaxItemIDLexicographic(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockItemRepository) MaxItemIDByDateAdded(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockItemRepository) Insert(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) DecrementStock(ctx context.Context, itemID string, quantity int) (int, error) {
	args := m.Called(ctx, itemID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockItemRepository) UpdatePopularityScores(ctx context.Context, scores map[string]float64) error {
	args := m.Called(ctx, scores)
	return args.Error(0)
}

func (m *MockItemRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockFeatureRepository implements demand.FeatureRepository for testing
type MockFeatureRepository struct {
	mock.Mock
}

func (m *MockFeatureRepository) FindAll(ctx context.Context) ([]demand.Feature, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]demand.Feature), args.Error(1)
}

func (m *MockFeatureRepository) UpsertAll(ctx context.Context, features []demand.Feature) error {
	args := m.Called(ctx, features)
	return args.Error(0)
}

// MockPredictionRepository implements forecast.PredictionRepository for testing
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]forecast.Prediction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) InsertBatch(ctx context.Context, predictions []forecast.Prediction) error {
	args := m.Called(ctx, predictions)
	return args.Error(0)
}

func (m *MockPredictionRepository) DeleteCreatedBetween(ctx context.Context, start, end time.Time) error {
	args := m.Called(ctx, start, end)
	return args.Error(0)
}

// MockPredictor implements forecast.Predictor for testing
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, items []catalog.Item) ([]forecast.Prediction, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.Prediction), args.Error(1)
}

// MockViewCache implements forecast.ViewCache for testing
type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) Get(ctx context.Context) ([]forecast.MergedItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.MergedItem), args.Error(1)
}

func (m *MockViewCache) Set(ctx context.Context, items []forecast.MergedItem, ttl time.Duration) error {
	args := m.Called(ctx, items, ttl)
	return args.Error(0)
}

func (m *MockViewCache) PatchStock(ctx context.Context, itemID string, stock int) (bool, error) {
	args := m.Called(ctx, itemID, stock)
	return args.Bool(0), args.Error(1)
}

func (m *MockViewCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
