package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tecelaria/varsearch/internal/domain"
)

type suggestFixture struct {
	index   *MockAttributeIndex
	catalog *MockCatalogReader
	stock   *MockStockReader
	svc     *SuggestService
}

func newSuggestFixture(limit int) *suggestFixture {
	f := &suggestFixture{
		index:   new(MockAttributeIndex),
		catalog: new(MockCatalogReader),
		stock:   new(MockStockReader),
	}
	resolver := NewResolver(f.index, new(MockAttributeIndex), testTaxonomy)
	f.svc = NewSuggestService(
		resolver,
		f.catalog,
		NewStockFilter(f.stock),
		VariantImageResolver{Placeholder: "/ph.png"},
		AttributeLinkResolver{},
		limit,
		"$",
	)
	return f
}

func TestSuggest_EmptyQueryShortCircuits(t *testing.T) {
	f := newSuggestFixture(20)

	out, err := f.svc.Suggest(context.Background(), "   ")

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	f.index.AssertNotCalled(t, "LookupVariantMatches", mock.Anything, mock.Anything, mock.Anything)
	f.catalog.AssertNotCalled(t, "TitleMatches", mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggest_MergesSourcesAndHydratesVariants(t *testing.T) {
	f := newSuggestFixture(20)

	f.index.On("LookupVariantMatches", mock.Anything, testTaxonomy, mock.Anything).Return([]VariantMatch{
		{ParentID: 10, VariantID: 101},
	}, nil)
	f.catalog.On("TitleMatches", mock.Anything, mock.Anything, 20).Return([]int64{1}, nil)
	f.catalog.On("TagMatches", mock.Anything, mock.Anything, 20).Return([]int64{20}, nil)

	f.stock.On("ProductStock", mock.Anything, []int64{1, 10, 20}).Return(map[int64]ProductStock{
		1:  {Kind: domain.KindSimple, Status: domain.StockInStock},
		10: {Kind: domain.KindVariantBearing, Status: domain.StockInStock},
		20: {Kind: domain.KindSimple, Status: domain.StockOutOfStock},
	}, nil)
	f.stock.On("VariantStock", mock.Anything, []int64{101}).Return(map[int64]domain.StockStatus{
		101: domain.StockInStock,
	}, nil)

	f.catalog.On("ProductsByIDs", mock.Anything, []int64{1, 10}).Return(map[int64]*domain.Product{
		1:  {ID: 1, Title: "Blue Mug", PriceCents: 500, ImageURL: "/mug.jpg", URL: "https://shop.example/p/mug"},
		10: {ID: 10, Title: "Sofa", PriceCents: 100000, ImageURL: "/sofa.jpg", URL: "https://shop.example/p/sofa"},
	}, nil)
	f.catalog.On("VariantsByIDs", mock.Anything, []int64{101}).Return(map[int64]*domain.Variant{
		101: {
			ID: 101, ParentID: 10, PriceCents: 120000, ImageURL: "/sofa-blue.jpg",
			Attributes: []domain.Attribute{{Name: "pa_fabric-color", Value: "blue"}},
		},
	}, nil)

	out, err := f.svc.Suggest(context.Background(), "blue")

	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, SuggestionTypeProduct, out[0].Type)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, "/mug.jpg", out[0].ImageURL)
	assert.Equal(t, "https://shop.example/p/mug", out[0].URL)
	assert.Equal(t, `<span class="price">$5.00</span>`, out[0].PriceHTML)

	// The attribute-matched product carries its variant's image, price and
	// attribute-qualified link.
	assert.Equal(t, int64(10), out[1].ID)
	assert.Equal(t, "/sofa-blue.jpg", out[1].ImageURL)
	assert.Equal(t, "https://shop.example/p/sofa?attribute_pa_fabric-color=blue", out[1].URL)
	assert.Equal(t, `<span class="price">$1200.00</span>`, out[1].PriceHTML)
}

func TestSuggest_NoMatchesYieldsSentinel(t *testing.T) {
	f := newSuggestFixture(20)

	f.index.On("LookupVariantMatches", mock.Anything, testTaxonomy, mock.Anything).Return([]VariantMatch{}, nil)
	f.catalog.On("TitleMatches", mock.Anything, mock.Anything, 20).Return([]int64{}, nil)
	f.catalog.On("TagMatches", mock.Anything, mock.Anything, 20).Return([]int64{}, nil)

	out, err := f.svc.Suggest(context.Background(), "mauve")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, SuggestionTypeNoResults, out[0].Type)
	assert.Equal(t, "No products found", out[0].Title)
	f.catalog.AssertNotCalled(t, "ProductsByIDs", mock.Anything, mock.Anything)
}

func TestSuggest_CapsAtLimit(t *testing.T) {
	f := newSuggestFixture(2)

	f.index.On("LookupVariantMatches", mock.Anything, testTaxonomy, mock.Anything).Return([]VariantMatch{}, nil)
	f.catalog.On("TitleMatches", mock.Anything, mock.Anything, 2).Return([]int64{1, 2, 3}, nil)
	f.catalog.On("TagMatches", mock.Anything, mock.Anything, 2).Return([]int64{}, nil)

	f.stock.On("ProductStock", mock.Anything, []int64{1, 2, 3}).Return(map[int64]ProductStock{
		1: {Kind: domain.KindSimple, Status: domain.StockInStock},
		2: {Kind: domain.KindSimple, Status: domain.StockInStock},
		3: {Kind: domain.KindSimple, Status: domain.StockInStock},
	}, nil)
	f.catalog.On("ProductsByIDs", mock.Anything, []int64{1, 2}).Return(map[int64]*domain.Product{
		1: {ID: 1, Title: "A", URL: "https://shop.example/p/a"},
		2: {ID: 2, Title: "B", URL: "https://shop.example/p/b"},
	}, nil)

	out, err := f.svc.Suggest(context.Background(), "blue")

	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestSuggest_StaleCandidatesYieldSentinel(t *testing.T) {
	f := newSuggestFixture(20)

	f.index.On("LookupVariantMatches", mock.Anything, testTaxonomy, mock.Anything).Return([]VariantMatch{}, nil)
	f.catalog.On("TitleMatches", mock.Anything, mock.Anything, 20).Return([]int64{1}, nil)
	f.catalog.On("TagMatches", mock.Anything, mock.Anything, 20).Return([]int64{}, nil)
	f.stock.On("ProductStock", mock.Anything, []int64{1}).Return(map[int64]ProductStock{
		1: {Kind: domain.KindSimple, Status: domain.StockInStock},
	}, nil)
	// The product vanished between the id query and hydration.
	f.catalog.On("ProductsByIDs", mock.Anything, []int64{1}).Return(map[int64]*domain.Product{}, nil)

	out, err := f.svc.Suggest(context.Background(), "blue")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, SuggestionTypeNoResults, out[0].Type)
}

func TestSuggest_MissingImageUsesPlaceholder(t *testing.T) {
	f := newSuggestFixture(20)

	f.index.On("LookupVariantMatches", mock.Anything, testTaxonomy, mock.Anything).Return([]VariantMatch{}, nil)
	f.catalog.On("TitleMatches", mock.Anything, mock.Anything, 20).Return([]int64{1}, nil)
	f.catalog.On("TagMatches", mock.Anything, mock.Anything, 20).Return([]int64{}, nil)
	f.stock.On("ProductStock", mock.Anything, []int64{1}).Return(map[int64]ProductStock{
		1: {Kind: domain.KindSimple, Status: domain.StockInStock},
	}, nil)
	f.catalog.On("ProductsByIDs", mock.Anything, []int64{1}).Return(map[int64]*domain.Product{
		1: {ID: 1, Title: "A", URL: "https://shop.example/p/a"},
	}, nil)

	out, err := f.svc.Suggest(context.Background(), "blue")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "/ph.png", out[0].ImageURL)
}
