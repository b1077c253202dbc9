package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/service"
)

// ProductRepository reads catalog products, variants, tags and stock.
type ProductRepository struct {
	db dbtx
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: pool}
}

// TitleMatches returns product ids whose title matches any pattern,
// ordered by id so retrieval order is stable across requests.
func (r *ProductRepository) TitleMatches(ctx context.Context, patterns []string, limit int) ([]int64, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id FROM products WHERE title ILIKE ANY($1) ORDER BY id LIMIT $2`,
		patterns, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// TagMatches returns ids of products carrying a tag matching any pattern.
func (r *ProductRepository) TagMatches(ctx context.Context, patterns []string, limit int) ([]int64, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT product_id FROM product_tags WHERE tag ILIKE ANY($1)
		 GROUP BY product_id ORDER BY product_id LIMIT $2`,
		patterns, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ProductsByIDs loads full product rows keyed by id. Unknown ids are
// simply absent from the result; stale references degrade, they don't fail.
func (r *ProductRepository) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]*domain.Product{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, title, kind, stock_status, price_cents, image_url, srcset, url, created_at, updated_at
		 FROM products WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]*domain.Product)
	for rows.Next() {
		var p domain.Product
		var srcset *string
		if err := rows.Scan(&p.ID, &p.Title, &p.Kind, &p.StockStatus, &p.PriceCents, &p.ImageURL, &srcset, &p.URL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if srcset != nil {
			p.Srcset = *srcset
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

// VariantsByIDs loads variants together with their ordered attributes.
func (r *ProductRepository) VariantsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Variant, error) {
	if len(ids) == 0 {
		return map[int64]*domain.Variant{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, parent_id, position, stock_status, price_cents, image_url, srcset
		 FROM variants WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]*domain.Variant)
	for rows.Next() {
		var v domain.Variant
		var imageURL, srcset *string
		if err := rows.Scan(&v.ID, &v.ParentID, &v.Position, &v.StockStatus, &v.PriceCents, &imageURL, &srcset); err != nil {
			return nil, err
		}
		if imageURL != nil {
			v.ImageURL = *imageURL
		}
		if srcset != nil {
			v.Srcset = *srcset
		}
		out[v.ID] = &v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attrRows, err := r.db.Query(ctx,
		`SELECT variant_id, name, value FROM variant_attributes
		 WHERE variant_id = ANY($1) ORDER BY variant_id, position`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer attrRows.Close()
	for attrRows.Next() {
		var variantID int64
		var attr domain.Attribute
		if err := attrRows.Scan(&variantID, &attr.Name, &attr.Value); err != nil {
			return nil, err
		}
		if v, ok := out[variantID]; ok {
			v.Attributes = append(v.Attributes, attr)
		}
	}
	return out, attrRows.Err()
}

// ProductStock loads product kind and stock status for the stock filter.
func (r *ProductRepository) ProductStock(ctx context.Context, ids []int64) (map[int64]service.ProductStock, error) {
	if len(ids) == 0 {
		return map[int64]service.ProductStock{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, kind, stock_status FROM products WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]service.ProductStock)
	for rows.Next() {
		var id int64
		var ps service.ProductStock
		if err := rows.Scan(&id, &ps.Kind, &ps.Status); err != nil {
			return nil, err
		}
		out[id] = ps
	}
	return out, rows.Err()
}

// VariantStock loads stock status for the given variant ids.
func (r *ProductRepository) VariantStock(ctx context.Context, ids []int64) (map[int64]domain.StockStatus, error) {
	if len(ids) == 0 {
		return map[int64]domain.StockStatus{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, stock_status FROM variants WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]domain.StockStatus)
	for rows.Next() {
		var id int64
		var status domain.StockStatus
		if err := rows.Scan(&id, &status); err != nil {
			return nil, err
		}
		out[id] = status
	}
	return out, rows.Err()
}

// AnyPurchasableChild reports, per parent id, whether at least one child
// variant is purchasable.
func (r *ProductRepository) AnyPurchasableChild(ctx context.Context, parentIDs []int64) (map[int64]bool, error) {
	if len(parentIDs) == 0 {
		return map[int64]bool{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT parent_id FROM variants
		 WHERE parent_id = ANY($1) AND stock_status IN ('instock', 'onbackorder')`,
		parentIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]bool, len(parentIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ListProducts runs the restricted listing query: an explicit id
// allow-list replaces the platform's own free-text search, the allow-list
// sequence forces the row order, and out-of-stock rows can be excluded.
func (r *ProductRepository) ListProducts(ctx context.Context, q service.ListingQuery) ([]*domain.Product, error) {
	if len(q.AllowIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id, title, kind, stock_status, price_cents, image_url, srcset, url, created_at, updated_at
		 FROM products WHERE id = ANY($1)`
	if q.ExcludeOutOfStock {
		query += ` AND stock_status <> 'outofstock'`
	}
	query += ` ORDER BY array_position($1, id)`

	rows, err := r.db.Query(ctx, query, q.AllowIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		var p domain.Product
		var srcset *string
		if err := rows.Scan(&p.ID, &p.Title, &p.Kind, &p.StockStatus, &p.PriceCents, &p.ImageURL, &srcset, &p.URL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if srcset != nil {
			p.Srcset = *srcset
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func scanIDs(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
