package service

import (
	"context"

	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/markup"
	"github.com/tecelaria/varsearch/internal/normalize"
)

// Mode selects how the pipeline treats multiple matching variants per
// product: search mode keeps one representative, filter mode fans out one
// card per matching variant.
type Mode string

const (
	ModeSearch Mode = "search"
	ModeFilter Mode = "filter"
)

// ParseMode validates a mode string; empty defaults to search.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeSearch, nil
	case ModeSearch, ModeFilter:
		return Mode(s), nil
	}
	return "", domain.ErrInvalidListingMode
}

// ListingQuery is the restriction the engine places on the outgoing
// listing query: an explicit id allow-list replacing the platform's own
// free-text search, row order forced by allow-list position, and an
// out-of-stock exclusion.
type ListingQuery struct {
	AllowIDs          []int64
	OrderByAllowList  bool
	ExcludeOutOfStock bool
}

// ListingReader executes restricted listing queries.
type ListingReader interface {
	ListProducts(ctx context.Context, q ListingQuery) ([]*domain.Product, error)
}

// CatalogReader provides the catalog lookups the pipeline reads.
type CatalogReader interface {
	TitleMatches(ctx context.Context, patterns []string, limit int) ([]int64, error)
	TagMatches(ctx context.Context, patterns []string, limit int) ([]int64, error)
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	VariantsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Variant, error)
}

// ImageResolver picks the image shown for a product card. v is nil when no
// variant matched the current term.
type ImageResolver interface {
	ResolveImage(p *domain.Product, v *domain.Variant) (src, srcset string)
}

// LinkResolver picks the card link target, qualifying it with the matched
// variant's attributes when one exists.
type LinkResolver interface {
	ResolveLink(p *domain.Product, v *domain.Variant) string
}

// VariantImageResolver prefers the matched variant's own image, falls back
// to the parent product image, then to a placeholder.
type VariantImageResolver struct {
	Placeholder string
}

func (r VariantImageResolver) ResolveImage(p *domain.Product, v *domain.Variant) (string, string) {
	if v != nil && v.ImageURL != "" {
		return v.ImageURL, v.Srcset
	}
	if p != nil && p.ImageURL != "" {
		return p.ImageURL, p.Srcset
	}
	return r.Placeholder, ""
}

// AttributeLinkResolver appends the variant-selecting query parameters to
// the product permalink.
type AttributeLinkResolver struct{}

func (AttributeLinkResolver) ResolveLink(p *domain.Product, v *domain.Variant) string {
	if p == nil {
		return ""
	}
	if v == nil {
		return p.URL
	}
	return v.SelectingURL(p.URL)
}

// Override carries the per-product card overrides handed to the renderer:
// the representative variant's image and attribute-qualified link.
type Override struct {
	VariantID int64  `json:"variant_id"`
	ImageURL  string `json:"image_url"`
	Srcset    string `json:"srcset,omitempty"`
	URL       string `json:"url"`
}

// ListingPlan is the engine's answer to one listing request. IDs is the
// ordered allow-list ([NoMatchID] when nothing survived, empty when the
// query itself was empty and no restriction applies). Queues carries, per
// product, the extra matching variant ids a filter-mode listing must fan
// out into additional cards.
type ListingPlan struct {
	IDs       []int64
	Overrides map[int64]*Override
	Queues    map[int64][]int64
}

// ListingEntry is one hydrated listing row with overrides already applied.
type ListingEntry struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Srcset    string `json:"srcset,omitempty"`
	URL       string `json:"url"`
	PriceHTML string `json:"price_html"`
}

// ListingService drives the search/filter pipeline for listing requests.
// Every call builds its own request-scoped cache; the service itself holds
// no mutable state and is safe for concurrent use.
type ListingService struct {
	resolver       *Resolver
	catalog        CatalogReader
	listing        ListingReader
	stock          *StockFilter
	images         ImageResolver
	links          LinkResolver
	candidateLimit int
	currencyPrefix string
}

func NewListingService(resolver *Resolver, catalog CatalogReader, listing ListingReader, stock *StockFilter, images ImageResolver, links LinkResolver, currencyPrefix string) *ListingService {
	return &ListingService{
		resolver:       resolver,
		catalog:        catalog,
		listing:        listing,
		stock:          stock,
		images:         images,
		links:          links,
		candidateLimit: 100,
		currencyPrefix: currencyPrefix,
	}
}

// Plan resolves the query into the listing restriction and card overrides.
// An empty query yields an unrestricted plan (empty IDs, no overrides): the
// neutral result, not the no-match sentinel.
func (s *ListingService) Plan(ctx context.Context, rawQuery string, mode Mode) (*ListingPlan, error) {
	terms := normalize.Terms(rawQuery)
	if len(terms) == 0 {
		return &ListingPlan{Overrides: map[int64]*Override{}, Queues: map[int64][]int64{}}, nil
	}

	cache := NewRequestCache(s.resolver)
	matchSet, err := cache.MatchSet(ctx, terms, mode == ModeFilter)
	if err != nil {
		return nil, err
	}

	patterns := normalize.Patterns(terms)
	titleIDs, err := s.catalog.TitleMatches(ctx, patterns, s.candidateLimit)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.catalog.TagMatches(ctx, patterns, s.candidateLimit)
	if err != nil {
		return nil, err
	}

	merged := MergeCandidates(titleIDs, matchSet.Parents(), tagIDs)
	inStock, err := s.stock.FilterInStock(ctx, merged, matchSet)
	if err != nil {
		return nil, err
	}

	plan := &ListingPlan{
		IDs:       RestrictionIDs(inStock),
		Overrides: make(map[int64]*Override),
		Queues:    make(map[int64][]int64),
	}

	var matched []int64
	var variantIDs []int64
	for _, id := range inStock {
		if rep, ok := matchSet.Representative(id); ok {
			matched = append(matched, id)
			variantIDs = append(variantIDs, rep)
		}
	}
	if len(matched) == 0 {
		return plan, nil
	}

	products, err := s.catalog.ProductsByIDs(ctx, matched)
	if err != nil {
		return nil, err
	}
	variants, err := s.catalog.VariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range matched {
		p := products[id]
		rep, _ := matchSet.Representative(id)
		v := variants[rep]
		if p == nil || v == nil {
			continue // stale reference: the default card stands
		}
		src, srcset := s.images.ResolveImage(p, v)
		plan.Overrides[id] = &Override{
			VariantID: rep,
			ImageURL:  src,
			Srcset:    srcset,
			URL:       s.links.ResolveLink(p, v),
		}
		if mode == ModeFilter {
			if extra := matchSet.Variants(id); len(extra) > 1 {
				plan.Queues[id] = extra[1:]
			}
		}
	}
	return plan, nil
}

// Products runs the restricted listing query and hydrates entries with the
// plan's overrides applied, for renderers that want final values instead
// of a plan.
func (s *ListingService) Products(ctx context.Context, rawQuery string, mode Mode) ([]*ListingEntry, error) {
	plan, err := s.Plan(ctx, rawQuery, mode)
	if err != nil {
		return nil, err
	}
	if len(plan.IDs) == 0 {
		return []*ListingEntry{}, nil
	}

	rows, err := s.listing.ListProducts(ctx, ListingQuery{
		AllowIDs:          plan.IDs,
		OrderByAllowList:  true,
		ExcludeOutOfStock: true,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*ListingEntry, 0, len(rows))
	for _, p := range rows {
		entry := &ListingEntry{
			ID:        p.ID,
			Title:     p.Title,
			PriceHTML: domain.FormatPriceHTML(p.PriceCents, s.currencyPrefix),
		}
		if ov := plan.Overrides[p.ID]; ov != nil {
			entry.ImageURL = ov.ImageURL
			entry.Srcset = ov.Srcset
			entry.URL = ov.URL
		} else {
			entry.ImageURL, entry.Srcset = s.images.ResolveImage(p, nil)
			entry.URL = s.links.ResolveLink(p, nil)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Augment post-processes a rendered listing fragment in filter mode so
// each product with more than one matching variant fans out into one card
// per variant. Products whose markup cannot be processed keep their single
// card; the page always renders.
func (s *ListingService) Augment(ctx context.Context, rawQuery, fragment string) (string, error) {
	terms := normalize.Terms(rawQuery)
	if len(terms) == 0 || fragment == "" {
		return fragment, nil
	}

	cache := NewRequestCache(s.resolver)
	queue, err := cache.VariationQueue(ctx, terms)
	if err != nil {
		return "", err
	}

	var productIDs, variantIDs []int64
	type fanout struct {
		productID int64
		first     int64
		extras    []int64
	}
	var fanouts []fanout
	for _, productID := range queue.Products() {
		first, ok := queue.Assign(productID)
		if !ok {
			continue
		}
		extras := queue.Drain(productID)
		if len(extras) == 0 {
			continue // single match: the rendered card is already correct
		}
		fanouts = append(fanouts, fanout{productID: productID, first: first, extras: extras})
		productIDs = append(productIDs, productID)
		variantIDs = append(variantIDs, first)
		variantIDs = append(variantIDs, extras...)
	}
	if len(fanouts) == 0 {
		return fragment, nil
	}

	products, err := s.catalog.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return "", err
	}
	variants, err := s.catalog.VariantsByIDs(ctx, variantIDs)
	if err != nil {
		return "", err
	}

	plans := make([]markup.CardPlan, 0, len(fanouts))
	for _, f := range fanouts {
		p := products[f.productID]
		first := variants[f.first]
		if p == nil || first == nil {
			continue
		}
		plan := markup.CardPlan{
			ProductID:    f.productID,
			OriginalURLs: []string{p.URL, s.links.ResolveLink(p, first)},
		}
		for _, id := range f.extras {
			v := variants[id]
			if v == nil {
				continue
			}
			src, srcset := s.images.ResolveImage(p, v)
			plan.Variants = append(plan.Variants, markup.VariantCard{
				ImageURL: src,
				Srcset:   srcset,
				URL:      s.links.ResolveLink(p, v),
			})
		}
		if len(plan.Variants) > 0 {
			plans = append(plans, plan)
		}
	}

	return markup.Augment(fragment, plans), nil
}
