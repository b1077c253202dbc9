package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tecelaria/varsearch/internal/domain"
)

type MockAttributeIndex struct {
	mock.Mock
}

func (m *MockAttributeIndex) LookupVariantMatches(ctx context.Context, taxonomy string, patterns []string) ([]VariantMatch, error) {
	args := m.Called(ctx, taxonomy, patterns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]VariantMatch), args.Error(1)
}

type MockStockReader struct {
	mock.Mock
}

func (m *MockStockReader) ProductStock(ctx context.Context, ids []int64) (map[int64]ProductStock, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]ProductStock), args.Error(1)
}

func (m *MockStockReader) VariantStock(ctx context.Context, ids []int64) (map[int64]domain.StockStatus, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.StockStatus), args.Error(1)
}

func (m *MockStockReader) AnyPurchasableChild(ctx context.Context, parentIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) TitleMatches(ctx context.Context, patterns []string, limit int) ([]int64, error) {
	args := m.Called(ctx, patterns, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockCatalogReader) TagMatches(ctx context.Context, patterns []string, limit int) ([]int64, error) {
	args := m.Called(ctx, patterns, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockCatalogReader) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.Product), args.Error(1)
}

func (m *MockCatalogReader) VariantsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Variant, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.Variant), args.Error(1)
}

type MockListingReader struct {
	mock.Mock
}

func (m *MockListingReader) ListProducts(ctx context.Context, q ListingQuery) ([]*domain.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}
