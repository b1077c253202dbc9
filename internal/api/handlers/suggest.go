package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/tecelaria/varsearch/internal/api"
	"github.com/tecelaria/varsearch/internal/service"
)

type SuggestService interface {
	Suggest(ctx context.Context, rawQuery string) ([]*service.Suggestion, error)
}

type SuggestHandler struct {
	svc SuggestService
}

func NewSuggestHandler(svc SuggestService) *SuggestHandler {
	return &SuggestHandler{svc: svc}
}

type SuggestResponse struct {
	Suggestions []*service.Suggestion `json:"suggestions"`
}

// Get serves the live-search endpoint. Responses are query-specific and
// stock-sensitive, so intermediaries must not cache them. An empty or
// missing query answers immediately with an empty list; it is never an
// error and never reaches the resolver.
func (h *SuggestHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.Success(w, http.StatusOK, SuggestResponse{Suggestions: []*service.Suggestion{}})
		return
	}

	suggestions, err := h.svc.Suggest(r.Context(), query)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}
