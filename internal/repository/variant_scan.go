package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tecelaria/varsearch/internal/service"
)

// VariantScanRepository is the fallback path of the attribute match
// resolver: it scans variant rows and joins their attribute metadata and
// stock state to term records. Functionally identical output to the fast
// lookup, just slower; callers must not be able to tell which one ran.
type VariantScanRepository struct {
	db dbtx
}

func NewVariantScanRepository(pool *pgxpool.Pool) *VariantScanRepository {
	return &VariantScanRepository{db: pool}
}

func (r *VariantScanRepository) LookupVariantMatches(ctx context.Context, taxonomy string, patterns []string) ([]service.VariantMatch, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT v.parent_id, v.id
		 FROM variants v
		 JOIN variant_attributes va ON va.variant_id = v.id AND va.name = $1
		 JOIN attribute_terms t ON t.taxonomy = va.name AND t.slug = va.value
		 WHERE v.stock_status IN ('instock', 'onbackorder')
		   AND (t.name ILIKE ANY($2) OR t.slug ILIKE ANY($2))
		 ORDER BY v.parent_id, v.id`,
		taxonomy, patterns,
	)
	if err != nil {
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
	return matches, rows.Err()
}
