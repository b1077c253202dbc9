package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tecelaria/varsearch/internal/domain"
)

// CatalogSeedRepository writes catalog fixture data. The engine itself
// never mutates the catalog; this exists for the seed command and tests,
// standing in for the host platform's own persistence.
type CatalogSeedRepository struct {
	db dbtx
}

func NewCatalogSeedRepository(pool *pgxpool.Pool) *CatalogSeedRepository {
	return &CatalogSeedRepository{db: pool}
}

func NewCatalogSeedRepositoryWithTx(tx pgx.Tx) *CatalogSeedRepository {
	return &CatalogSeedRepository{db: tx}
}

// CreateProduct inserts a product and returns its assigned id.
func (r *CatalogSeedRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.QueryRow(ctx,
		`INSERT INTO products (title, kind, stock_status, price_cents, image_url, srcset, url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		p.Title, p.Kind, p.StockStatus, p.PriceCents, p.ImageURL, nullableString(p.Srcset), p.URL, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

// CreateVariant inserts a variant and its ordered attributes.
func (r *CatalogSeedRepository) CreateVariant(ctx context.Context, v *domain.Variant) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO variants (parent_id, position, stock_status, price_cents, image_url, srcset)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		v.ParentID, v.Position, v.StockStatus, v.PriceCents, nullableString(v.ImageURL), nullableString(v.Srcset),
	).Scan(&v.ID)
	if err != nil {
		return err
	}
	for i, attr := range v.Attributes {
		_, err := r.db.Exec(ctx,
			`INSERT INTO variant_attributes (variant_id, name, value, position) VALUES ($1, $2, $3, $4)`,
			v.ID, attr.Name, attr.Value, i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateTerm inserts an attribute term and returns its assigned id.
func (r *CatalogSeedRepository) CreateTerm(ctx context.Context, t *domain.AttributeTerm) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO attribute_terms (taxonomy, name, slug) VALUES ($1, $2, $3) RETURNING id`,
		t.Taxonomy, t.Name, t.Slug,
	).Scan(&t.ID)
}

// AddTag attaches a tag to a product.
func (r *CatalogSeedRepository) AddTag(ctx context.Context, productID int64, tag string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO product_tags (product_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		productID, tag,
	)
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
