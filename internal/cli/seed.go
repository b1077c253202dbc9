package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
	"github.com/tecelaria/varsearch/internal/config"
	"github.com/tecelaria/varsearch/internal/database"
	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/repository"
)

// catalogFixture is the on-disk shape consumed by the seed command. It
// mirrors what a host platform export would look like for this engine:
// attribute terms, products, and per-product variants with ordered
// attribute assignments.
type catalogFixture struct {
	Terms    []fixtureTerm    `json:"terms"`
	Products []fixtureProduct `json:"products"`
}

type fixtureTerm struct {
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
}

type fixtureProduct struct {
	Title       string           `json:"title"`
	Kind        string           `json:"kind"`
	StockStatus string           `json:"stock_status"`
	PriceCents  int64            `json:"price_cents"`
	ImageURL    string           `json:"image_url"`
	Srcset      string           `json:"srcset,omitempty"`
	URL         string           `json:"url"`
	Tags        []string         `json:"tags,omitempty"`
	Variants    []fixtureVariant `json:"variants,omitempty"`
}

type fixtureVariant struct {
	StockStatus string             `json:"stock_status"`
	PriceCents  int64              `json:"price_cents"`
	ImageURL    string             `json:"image_url,omitempty"`
	Srcset      string             `json:"srcset,omitempty"`
	Attributes  []fixtureAttribute `json:"attributes"`
}

type fixtureAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog fixture into the database",
		Long:  "Load products, variants and attribute terms from a JSON fixture file, then rebuild the attribute lookup table",
		RunE:  runSeed,
	}

	cmd.Flags().StringP("file", "f", "", "Path to the JSON catalog fixture (required)")
	cmd.Flags().Bool("skip-lookup", false, "Skip rebuilding the attribute lookup table after seeding")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path, _ := cmd.Flags().GetString("file")
	fixture, err := loadFixture(path)
	if err != nil {
		return err
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	runner := repository.NewTxRunner(pool)
	var productCount, variantCount int

	err = runner.WithTx(ctx, func(seed *repository.CatalogSeedRepository) error {
		for _, t := range fixture.Terms {
			term := domain.AttributeTerm{
				Taxonomy: t.Taxonomy,
				Name:     t.Name,
				Slug:     t.Slug,
			}
			if term.Slug == "" {
				term.Slug = slug.Make(t.Name)
			}
			if err := seed.CreateTerm(ctx, &term); err != nil {
				return fmt.Errorf("failed to create term %q: %w", t.Name, err)
			}
		}

		for _, fp := range fixture.Products {
			kind := domain.ProductKind(fp.Kind)
			if !kind.IsValid() {
				return fmt.Errorf("product %q: unknown kind %q", fp.Title, fp.Kind)
			}
			status := domain.StockStatus(fp.StockStatus)
			if !status.IsValid() {
				return fmt.Errorf("product %q: unknown stock status %q", fp.Title, fp.StockStatus)
			}

			product := domain.Product{
				Title:       fp.Title,
				Kind:        kind,
				StockStatus: status,
				PriceCents:  fp.PriceCents,
				ImageURL:    fp.ImageURL,
				Srcset:      fp.Srcset,
				URL:         fp.URL,
			}
			if err := seed.CreateProduct(ctx, &product); err != nil {
				return fmt.Errorf("failed to create product %q: %w", fp.Title, err)
			}
			productCount++

			for _, tag := range fp.Tags {
				if err := seed.AddTag(ctx, product.ID, tag); err != nil {
					return fmt.Errorf("failed to tag product %q: %w", fp.Title, err)
				}
			}

			for i, fv := range fp.Variants {
				vstatus := domain.StockStatus(fv.StockStatus)
				if !vstatus.IsValid() {
					return fmt.Errorf("product %q variant %d: unknown stock status %q", fp.Title, i, fv.StockStatus)
				}
				variant := domain.Variant{
					ParentID:    product.ID,
					Position:    i,
					StockStatus: vstatus,
					PriceCents:  fv.PriceCents,
					ImageURL:    fv.ImageURL,
					Srcset:      fv.Srcset,
				}
				for _, attr := range fv.Attributes {
					variant.Attributes = append(variant.Attributes, domain.Attribute{
						Name:  attr.Name,
						Value: attr.Value,
					})
				}
				if err := seed.CreateVariant(ctx, &variant); err != nil {
					return fmt.Errorf("failed to create variant %d of %q: %w", i, fp.Title, err)
				}
				variantCount++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("seeded %d terms, %d products, %d variants", len(fixture.Terms), productCount, variantCount)

	skipLookup, _ := cmd.Flags().GetBool("skip-lookup")
	if skipLookup {
		log.Println("skipping attribute lookup rebuild")
		return nil
	}

	lookupRepo := repository.NewAttributeLookupRepository(pool)
	rows, err := lookupRepo.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild attribute lookup: %w", err)
	}
	log.Printf("rebuilt attribute lookup (%d rows)", rows)

	return nil
}

func loadFixture(path string) (*catalogFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var fixture catalogFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture file: %w", err)
	}

	if len(fixture.Products) == 0 {
		return nil, fmt.Errorf("fixture contains no products")
	}

	return &fixture, nil
}
