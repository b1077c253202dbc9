package middleware

import (
	"net/http"

	"github.com/tecelaria/varsearch/internal/api"
	"golang.org/x/time/rate"
)

// RateLimit applies a shared token bucket to the wrapped routes. The
// live-search endpoint is public and query-per-keystroke; one process-wide
// bucket keeps a misbehaving storefront script from starving the database.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
