package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tecelaria/varsearch/internal/api"
	"github.com/tecelaria/varsearch/internal/domain"
	"github.com/tecelaria/varsearch/internal/service"
)

type ListingService interface {
	Plan(ctx context.Context, rawQuery string, mode service.Mode) (*service.ListingPlan, error)
	Products(ctx context.Context, rawQuery string, mode service.Mode) ([]*service.ListingEntry, error)
	Augment(ctx context.Context, rawQuery, fragment string) (string, error)
}

type ListingHandler struct {
	svc ListingService
}

func NewListingHandler(svc ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type PlanRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
}

type PlanResponse struct {
	// IDs is the ordered allow-list for the listing query. Empty means the
	// query was empty and no restriction applies; [0] means no results.
	IDs       []int64                     `json:"ids"`
	Overrides map[int64]*service.Override `json:"overrides"`
	Queues    map[int64][]int64           `json:"queues,omitempty"`
}

// Plan resolves a query into the listing restriction plus the per-product
// card overrides the renderer applies.
func (h *ListingHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	plan, err := h.svc.Plan(r.Context(), req.Query, mode)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := PlanResponse{
		IDs:       plan.IDs,
		Overrides: plan.Overrides,
	}
	if resp.IDs == nil {
		resp.IDs = []int64{}
	}
	if mode == service.ModeFilter {
		resp.Queues = plan.Queues
	}
	api.Success(w, http.StatusOK, resp)
}

type ProductsResponse struct {
	Products []*service.ListingEntry `json:"products"`
}

// Products runs the restricted listing query server-side and returns
// hydrated entries with overrides already applied.
func (h *ListingHandler) Products(w http.ResponseWriter, r *http.Request) {
	mode, err := service.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	entries, err := h.svc.Products(r.Context(), r.URL.Query().Get("q"), mode)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, ProductsResponse{Products: entries})
}

type AugmentRequest struct {
	Query string `json:"query"`
	HTML  string `json:"html"`
}

type AugmentResponse struct {
	HTML string `json:"html"`
}

// Augment post-processes a rendered listing fragment: products with
// several matching variants fan out into one card per variant.
func (h *ListingHandler) Augment(w http.ResponseWriter, r *http.Request) {
	var req AugmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HTML == "" {
		api.HandleError(w, domain.NewDomainError(domain.ErrCodeValidation, "html fragment is required"))
		return
	}

	out, err := h.svc.Augment(r.Context(), req.Query, req.HTML)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, AugmentResponse{HTML: out})
}
