package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tecelaria/varsearch/internal/api/handlers"
	"github.com/tecelaria/varsearch/internal/service"
)

type MockSuggestService struct {
	mock.Mock
}

func (m *MockSuggestService) Suggest(ctx context.Context, rawQuery string) ([]*service.Suggestion, error) {
	args := m.Called(ctx, rawQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.Suggestion), args.Error(1)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Plan(ctx context.Context, rawQuery string, mode service.Mode) (*service.ListingPlan, error) {
	args := m.Called(ctx, rawQuery, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListingPlan), args.Error(1)
}

func (m *MockListingService) Products(ctx context.Context, rawQuery string, mode service.Mode) ([]*service.ListingEntry, error) {
	args := m.Called(ctx, rawQuery, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.ListingEntry), args.Error(1)
}

func (m *MockListingService) Augment(ctx context.Context, rawQuery, fragment string) (string, error) {
	args := m.Called(ctx, rawQuery, fragment)
	return args.String(0), args.Error(1)
}

func setupRouter(rps float64, burst int) (http.Handler, *MockSuggestService, *MockListingService) {
	suggestSvc := new(MockSuggestService)
	listingSvc := new(MockListingService)

	cfg := RouterConfig{
		SuggestHandler: handlers.NewSuggestHandler(suggestSvc),
		ListingHandler: handlers.NewListingHandler(listingSvc),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}

	return NewRouter(cfg), suggestSvc, listingSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _ := setupRouter(0, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_SuggestRoute(t *testing.T) {
	router, suggestSvc, _ := setupRouter(0, 0)

	suggestSvc.On("Suggest", mock.Anything, "blue").Return([]*service.Suggestion{
		{Type: service.SuggestionTypeProduct, ID: 10, Title: "Sofa"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/search/suggest?q=blue", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	suggestSvc.AssertExpectations(t)
}

func TestRouter_SuggestRateLimited(t *testing.T) {
	router, suggestSvc, _ := setupRouter(0.001, 1)

	suggestSvc.On("Suggest", mock.Anything, "blue").Return([]*service.Suggestion{}, nil)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/search/suggest?q=blue", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/search/suggest?q=blue", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouter_RateLimitDoesNotCoverListing(t *testing.T) {
	router, _, listingSvc := setupRouter(0.001, 1)

	listingSvc.On("Products", mock.Anything, "blue", service.ModeSearch).
		Return([]*service.ListingEntry{}, nil).Times(2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listing/products?q=blue", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	listingSvc.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _ := setupRouter(0, 0)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
