package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// limitRequests rejects requests beyond the limiter's rate with 429.
// A nil limiter disables limiting.
func limitRequests(l *rate.Limiter, next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			writeRPCError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newLimiter returns a limiter for rps requests per second, or nil when
// rps is not positive.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = int(rps) + 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
