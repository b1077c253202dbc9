package service

import (
	"context"

	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/normalize"
)

// RequestCache memoizes resolver output for the lifetime of one request so
// the several read sites of a single render pass (listing restriction,
// image override, link override, suggestion assembly) trigger the
// underlying index query at most once per distinct term. It is constructed
// per request and discarded with it; it carries no cross-request state and
// is not safe for use from multiple goroutines.
type RequestCache struct {
	resolver *Resolver
	entries  map[string]*domain.MatchSet
}

func NewRequestCache(resolver *Resolver) *RequestCache {
	return &RequestCache{
		resolver: resolver,
		entries:  make(map[string]*domain.MatchSet),
	}
}

// MatchSet resolves the terms through the cache. Empty results are cached
// too: idempotence within the request matters more than retrying a miss.
func (c *RequestCache) MatchSet(ctx context.Context, terms []normalize.Term, multiMatch bool) (*domain.MatchSet, error) {
	key := normalize.Key(terms)
	if multiMatch {
		key = "multi:" + key
	}
	if ms, ok := c.entries[key]; ok {
		return ms, nil
	}
	ms, err := c.resolver.Resolve(ctx, terms, multiMatch)
	if err != nil {
		return nil, err
	}
	c.entries[key] = ms
	return ms, nil
}

// VariationQueue builds the filter-mode queue from the multi-match
// MatchSet: per product, the ordered variant ids not yet assigned a card.
func (c *RequestCache) VariationQueue(ctx context.Context, terms []normalize.Term) (*VariationQueue, error) {
	ms, err := c.MatchSet(ctx, terms, true)
	if err != nil {
		return nil, err
	}
	q := &VariationQueue{remaining: make(map[int64][]int64, ms.Len())}
	for _, parentID := range ms.Parents() {
		q.order = append(q.order, parentID)
		q.remaining[parentID] = ms.Variants(parentID)
	}
	return q, nil
}

// VariationQueue tracks, per product, which matching variants still need a
// listing card. The renderer's own card consumes the head; the duplicator
// drains the rest.
type VariationQueue struct {
	order     []int64
	remaining map[int64][]int64
}

// Products returns the queued product ids in match order.
func (q *VariationQueue) Products() []int64 {
	out := make([]int64, len(q.order))
	copy(out, q.order)
	return out
}

// Assign pops the next variant for the product, marking it as carried by
// an existing card.
func (q *VariationQueue) Assign(productID int64) (int64, bool) {
	ids := q.remaining[productID]
	if len(ids) == 0 {
		return 0, false
	}
	q.remaining[productID] = ids[1:]
	return ids[0], true
}

// Drain removes and returns every variant still queued for the product.
func (q *VariationQueue) Drain(productID int64) []int64 {
	ids := q.remaining[productID]
	q.remaining[productID] = nil
	return ids
}

// Pending reports how many variants are still queued for the product.
func (q *VariationQueue) Pending(productID int64) int {
	return len(q.remaining[productID])
}
