package service

import (
	"context"
	"errors"

	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/normalize"
)

// VariantMatch is one attribute index row projected to its identifiers: a
// variant that carries a matching term, and its parent product.
type VariantMatch struct {
	ParentID  int64
	VariantID int64
}

// AttributeIndex answers "which variants carry an attribute term matching
// these patterns". Two interchangeable implementations exist: the fast
// precomputed lookup table and the slow per-variant metadata scan. Callers
// must not depend on which one ran.
type AttributeIndex interface {
	LookupVariantMatches(ctx context.Context, taxonomy string, patterns []string) ([]VariantMatch, error)
}

// Resolver turns normalized terms into a MatchSet. It is a pure read:
// calling it twice with the same input yields the same result, and it is
// safe for concurrent use across requests.
type Resolver struct {
	fast     AttributeIndex
	scan     AttributeIndex
	taxonomy string
}

func NewResolver(fast, scan AttributeIndex, taxonomy string) *Resolver {
	return &Resolver{fast: fast, scan: scan, taxonomy: taxonomy}
}

// Resolve matches the terms against the configured taxonomy and groups the
// matching in-stock variants by parent product. With multiMatch false only
// the first variant per parent is kept (stable by (parent, variant) id
// order); with multiMatch true every matching variant is retained in
// retrieval order for the filter/duplication flow. No match is not an
// error: the MatchSet is just empty.
func (r *Resolver) Resolve(ctx context.Context, terms []normalize.Term, multiMatch bool) (*domain.MatchSet, error) {
	ms := domain.NewMatchSet()
	if len(terms) == 0 {
		return ms, nil
	}

	patterns := normalize.Patterns(terms)
	matches, err := r.fast.LookupVariantMatches(ctx, r.taxonomy, patterns)
	if errors.Is(err, domain.ErrLookupTableUnavailable) {
		matches, err = r.scan.LookupVariantMatches(ctx, r.taxonomy, patterns)
	}
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		if !multiMatch && ms.Has(m.ParentID) {
			continue
		}
		ms.Add(m.ParentID, m.VariantID)
	}
	return ms, nil
}
