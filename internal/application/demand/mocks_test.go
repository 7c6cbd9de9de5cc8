package demand

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stocksense/backend/internal/domain/catalog"
	"github.com/stocksense/backend/internal/domain/demand"
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

// MockSaleRepository implements catalog.SaleRepository for testing
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByItemAndDate(ctx context.Context, itemID, date string) (*catalog.SaleRecord, error) {
	args := m.Called(ctx, itemID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SaleRecord), args.Error(1)
}

func (m *MockSaleRepository) FindSince(ctx context.Context, since string) ([]catalog.SaleRecord, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.SaleRecord), args.Error(1)
}

func (m *MockSaleRepository) Insert(ctx context.Context, record *catalog.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSaleRepository) UpdateQty(ctx context.Context, record *catalog.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
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
