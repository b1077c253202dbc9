package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tecelaria/varsearch/internal/api"
	"github.com/tecelaria/varsearch/internal/api/handlers"
	"github.com/tecelaria/varsearch/internal/api/middleware"
)

type RouterConfig struct {
	SuggestHandler *handlers.SuggestHandler
	ListingHandler *handlers.ListingHandler
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		r.Get("/search/suggest", cfg.SuggestHandler.Get)
	})

	r.Route("/listing", func(r chi.Router) {
		r.Post("/plan", cfg.ListingHandler.Plan)
		r.Get("/products", cfg.ListingHandler.Products)
		r.Post("/augment", cfg.ListingHandler.Augment)
	})

	return r
}
