//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tecelaria/varsearch/internal/api/handlers"
	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/repository"
	"github.com/tecelaria/varsearch/internal/server"
	"github.com/tecelaria/varsearch/internal/service"
	"github.com/tecelaria/varsearch/internal/testutil"
)

const e2eTaxonomy = "pa_fabric-color"

// E2EEnv holds all resources needed for end-to-end tests.
type E2EEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client

	// ids assigned by SeedCatalog
	MugID      int64
	SofaID     int64
	SofaBlueID int64
	SofaTealID int64
}

// SetupE2EEnv starts a database container, migrates it and serves the full
// router against it.
func SetupE2EEnv(t *testing.T) *E2EEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2EEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources.
func (e *E2EEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedCatalog loads the shared fixture: a simple mug plus a variant-bearing
// sofa with a light-blue and a teal variant, then rebuilds the lookup table.
func (e *E2EEnv) SeedCatalog() {
	runner := repository.NewTxRunner(e.Pool)
	err := runner.WithTx(e.Ctx, func(seed *repository.CatalogSeedRepository) error {
		for _, term := range []domain.AttributeTerm{
			{Taxonomy: e2eTaxonomy, Name: "Light Blue", Slug: "light-blue"},
			{Taxonomy: e2eTaxonomy, Name: "Teal", Slug: "teal"},
		} {
			if err := seed.CreateTerm(e.Ctx, &term); err != nil {
				return err
			}
		}

		mug := domain.Product{
			Title: "Blue Mug", Kind: domain.KindSimple, StockStatus: domain.StockInStock,
			PriceCents: 500, ImageURL: "/mug.jpg", URL: "https://shop.example/p/mug",
		}
		if err := seed.CreateProduct(e.Ctx, &mug); err != nil {
			return err
		}
		e.MugID = mug.ID

		sofa := domain.Product{
			Title: "Fabric Sofa", Kind: domain.KindVariantBearing, StockStatus: domain.StockInStock,
			PriceCents: 100000, ImageURL: "/sofa.jpg", URL: "https://shop.example/p/sofa",
		}
		if err := seed.CreateProduct(e.Ctx, &sofa); err != nil {
			return err
		}
		e.SofaID = sofa.ID

		blue := domain.Variant{
			ParentID: sofa.ID, StockStatus: domain.StockInStock, PriceCents: 110000,
			ImageURL:   "/sofa-blue.jpg",
			Attributes: []domain.Attribute{{Name: e2eTaxonomy, Value: "light-blue"}},
		}
		if err := seed.CreateVariant(e.Ctx, &blue); err != nil {
			return err
		}
		e.SofaBlueID = blue.ID

		teal := domain.Variant{
			ParentID: sofa.ID, Position: 1, StockStatus: domain.StockInStock, PriceCents: 112000,
			ImageURL:   "/sofa-teal.jpg",
			Attributes: []domain.Attribute{{Name: e2eTaxonomy, Value: "teal"}},
		}
		if err := seed.CreateVariant(e.Ctx, &teal); err != nil {
			return err
		}
		e.SofaTealID = teal.ID

		return nil
	})
	if err != nil {
		e.T.Fatalf("failed to seed catalog: %v", err)
	}

	if _, err := repository.NewAttributeLookupRepository(e.Pool).Rebuild(e.Ctx); err != nil {
		e.T.Fatalf("failed to rebuild lookup: %v", err)
	}
}

// APIResponse represents a standard API response.
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request.
func (e *E2EEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

// Post performs a POST request.
func (e *E2EEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body)
}

func (e *E2EEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer wires the real pipeline against the test database and serves it.
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	lookupRepo := repository.NewAttributeLookupRepository(pool)
	scanRepo := repository.NewVariantScanRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	resolver := service.NewResolver(lookupRepo, scanRepo, e2eTaxonomy)
	stock := service.NewStockFilter(productRepo)
	images := service.VariantImageResolver{Placeholder: "/placeholder.png"}
	links := service.AttributeLinkResolver{}

	suggestSvc := service.NewSuggestService(resolver, productRepo, stock, images, links, 20, "$")
	listingSvc := service.NewListingService(resolver, productRepo, productRepo, stock, images, links, "$")

	cfg := server.RouterConfig{
		SuggestHandler: handlers.NewSuggestHandler(suggestSvc),
		ListingHandler: handlers.NewListingHandler(listingSvc),
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.NewRouter(cfg),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
