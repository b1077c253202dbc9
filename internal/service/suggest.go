package service

import (
	"context"

	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/normalize"
)

const (
	SuggestionTypeProduct   = "product"
	SuggestionTypeNoResults = "no-results"

	defaultSuggestLimit = 20
)

// Suggestion is one live-search record. The no-results sentinel keeps the
// consuming UI's render path uniform: the endpoint never answers a
// non-empty query with an empty array.
type Suggestion struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	ImageURL  string `json:"image_url"`
	PriceHTML string `json:"price_html"`
}

// NoResultsSuggestion is the deterministic sentinel returned when a
// non-empty query matches nothing.
func NoResultsSuggestion() *Suggestion {
	return &Suggestion{
		Type:  SuggestionTypeNoResults,
		Title: "No products found",
	}
}

// SuggestService assembles live-search suggestions: normalize, resolve
// through a request-scoped cache, merge with title and tag matches, stock
// filter, hydrate, cap.
type SuggestService struct {
	resolver       *Resolver
	catalog        CatalogReader
	stock          *StockFilter
	images         ImageResolver
	links          LinkResolver
	limit          int
	currencyPrefix string
}

func NewSuggestService(resolver *Resolver, catalog CatalogReader, stock *StockFilter, images ImageResolver, links LinkResolver, limit int, currencyPrefix string) *SuggestService {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	return &SuggestService{
		resolver:       resolver,
		catalog:        catalog,
		stock:          stock,
		images:         images,
		links:          links,
		limit:          limit,
		currencyPrefix: currencyPrefix,
	}
}

// Suggest builds the capped suggestion list for a raw query. An empty or
// whitespace query short-circuits to an empty list before any catalog
// lookup runs.
func (s *SuggestService) Suggest(ctx context.Context, rawQuery string) ([]*Suggestion, error) {
	terms := normalize.Terms(rawQuery)
	if len(terms) == 0 {
		return []*Suggestion{}, nil
	}

	cache := NewRequestCache(s.resolver)
	matchSet, err := cache.MatchSet(ctx, terms, false)
	if err != nil {
		return nil, err
	}

	patterns := normalize.Patterns(terms)
	titleIDs, err := s.catalog.TitleMatches(ctx, patterns, s.limit)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.catalog.TagMatches(ctx, patterns, s.limit)
	if err != nil {
		return nil, err
	}

	merged := MergeCandidates(titleIDs, matchSet.Parents(), tagIDs)
	inStock, err := s.stock.FilterInStock(ctx, merged, matchSet)
	if err != nil {
		return nil, err
	}
	if len(inStock) > s.limit {
		inStock = inStock[:s.limit]
	}
	if len(inStock) == 0 {
		return []*Suggestion{NoResultsSuggestion()}, nil
	}

	products, err := s.catalog.ProductsByIDs(ctx, inStock)
	if err != nil {
		return nil, err
	}

	var variantIDs []int64
	for _, id := range inStock {
		if rep, ok := matchSet.Representative(id); ok {
			variantIDs = append(variantIDs, rep)
		}
	}
	variants := map[int64]*domain.Variant{}
	if len(variantIDs) > 0 {
		variants, err = s.catalog.VariantsByIDs(ctx, variantIDs)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*Suggestion, 0, len(inStock))
	for _, id := range inStock {
		p := products[id]
		if p == nil {
			continue // stale candidate id
		}
		var v *domain.Variant
		if rep, ok := matchSet.Representative(id); ok {
			v = variants[rep]
		}
		src, _ := s.images.ResolveImage(p, v)
		price := p.PriceCents
		if v != nil {
			price = v.PriceCents
		}
		out = append(out, &Suggestion{
			Type:      SuggestionTypeProduct,
			ID:        p.ID,
			Title:     p.Title,
			URL:       s.links.ResolveLink(p, v),
			ImageURL:  src,
			PriceHTML: domain.FormatPriceHTML(price, s.currencyPrefix),
		})
	}
	if len(out) == 0 {
		return []*Suggestion{NoResultsSuggestion()}, nil
	}
	return out, nil
}
