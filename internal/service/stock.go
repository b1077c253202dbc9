package service

import (
	"context"

	"github.com/tecelaria/varsearch/internal/domain"
)

// ProductStock is the slice of product state the stock filter needs.
type ProductStock struct {
	Kind   domain.ProductKind
	Status domain.StockStatus
}

// StockReader provides the read-only stock lookups behind the filter.
type StockReader interface {
	ProductStock(ctx context.Context, ids []int64) (map[int64]ProductStock, error)
	VariantStock(ctx context.Context, ids []int64) (map[int64]domain.StockStatus, error)
	AnyPurchasableChild(ctx context.Context, parentIDs []int64) (map[int64]bool, error)
}

// StockFilter removes candidates that cannot be bought. This is a hard
// filter, not a sort key: out-of-stock products disappear from the listing.
type StockFilter struct {
	repo StockReader
}

func NewStockFilter(repo StockReader) *StockFilter {
	return &StockFilter{repo: repo}
}

// FilterInStock keeps the candidate ids that qualify, preserving input
// order. A simple product qualifies on its own status. A variant-bearing
// product qualifies on its representative variant's status when the match
// set names one, and otherwise on any child variant being purchasable, so
// a product reached purely by title or tag match still shows when some
// variant can be bought. Unknown ids (stale references) drop out.
func (f *StockFilter) FilterInStock(ctx context.Context, ids []int64, matchSet *domain.MatchSet) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	stocks, err := f.repo.ProductStock(ctx, ids)
	if err != nil {
		return nil, err
	}

	var repIDs []int64
	var childCheck []int64
	for _, id := range ids {
		ps, ok := stocks[id]
		if !ok || ps.Kind != domain.KindVariantBearing {
			continue
		}
		if rep, ok := matchSet.Representative(id); ok {
			repIDs = append(repIDs, rep)
		} else {
			childCheck = append(childCheck, id)
		}
	}

	variantStock := map[int64]domain.StockStatus{}
	if len(repIDs) > 0 {
		variantStock, err = f.repo.VariantStock(ctx, repIDs)
		if err != nil {
			return nil, err
		}
	}

	// A stale representative id falls back to the any-child check rather
	// than failing the product outright.
	for _, id := range ids {
		ps, ok := stocks[id]
		if !ok || ps.Kind != domain.KindVariantBearing {
			continue
		}
		rep, hasRep := matchSet.Representative(id)
		if hasRep {
			if _, known := variantStock[rep]; !known {
				childCheck = append(childCheck, id)
			}
		}
	}

	anyChild := map[int64]bool{}
	if len(childCheck) > 0 {
		anyChild, err = f.repo.AnyPurchasableChild(ctx, childCheck)
		if err != nil {
			return nil, err
		}
	}

	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		ps, ok := stocks[id]
		if !ok {
			continue
		}
		switch ps.Kind {
		case domain.KindSimple:
			if ps.Status.Purchasable() {
				out = append(out, id)
			}
		case domain.KindVariantBearing:
			if rep, hasRep := matchSet.Representative(id); hasRep {
				if status, known := variantStock[rep]; known {
					if status.Purchasable() {
						out = append(out, id)
					}
					continue
				}
			}
			if anyChild[id] {
				out = append(out, id)
			}
		}
	}
	return out, nil
}
