package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/service"
)

// AttributeLookupRepository is the fast path of the attribute match
// resolver: a single indexed query over the precomputed lookup table,
// mirroring the host platform's product attribute lookup index.
type AttributeLookupRepository struct {
	db dbtx
}

func NewAttributeLookupRepository(pool *pgxpool.Pool) *AttributeLookupRepository {
	return &AttributeLookupRepository{db: pool}
}

// LookupVariantMatches returns (parent, variant) pairs whose attribute
// terms match any of the LIKE patterns within the taxonomy, restricted to
// variation-level in-stock rows, ordered by (parent_id, product_id) for
// deterministic first-wins selection downstream. A missing lookup table
// surfaces as domain.ErrLookupTableUnavailable so the caller can fall back
// to the per-variant scan.
func (r *AttributeLookupRepository) LookupVariantMatches(ctx context.Context, taxonomy string, patterns []string) ([]service.VariantMatch, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT l.parent_id, l.product_id
		 FROM attribute_lookup l
		 JOIN attribute_terms t ON t.id = l.term_id
		 WHERE l.taxonomy = $1
		   AND l.is_variation
		   AND l.in_stock
		   AND (t.name ILIKE ANY($2) OR t.slug ILIKE ANY($2))
		 ORDER BY l.parent_id, l.product_id`,
		taxonomy, patterns,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, domain.ErrLookupTableUnavailable
		}
		return nil, err
	}
	defer rows.Close()

	var matches []service.VariantMatch
	for rows.Next() {
		var m service.VariantMatch
		if err := rows.Scan(&m.ParentID, &m.VariantID); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return nil, domain.ErrLookupTableUnavailable
		}
		return nil, err
	}
	return matches, nil
}

// Rebuild derives the lookup table contents from the variants and their
// attribute metadata. The host platform owns this table in production; the
// service rebuilds it for seeding and tests.
func (r *AttributeLookupRepository) Rebuild(ctx context.Context) (int64, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM attribute_lookup`); err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx,
		`INSERT INTO attribute_lookup (parent_id, product_id, term_id, taxonomy, is_variation, in_stock)
		 SELECT v.parent_id, v.id, t.id, t.taxonomy, TRUE, v.stock_status IN ('instock', 'onbackorder')
		 FROM variants v
		 JOIN variant_attributes va ON va.variant_id = v.id
		 JOIN attribute_terms t ON t.taxonomy = va.name AND t.slug = va.value`,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
