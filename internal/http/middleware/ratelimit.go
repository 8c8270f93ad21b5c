package middleware

import (
	"net"
	"net/http"

	"mythoughts/internal/auth"
	"mythoughts/internal/metrics"
)

// RateLimit rejects requests once the client IP exceeds its bucket.
// It expects chi's RealIP to have run.
func RateLimit(l *auth.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}
			if !l.Allow(ip) {
				metrics.LoginThrottled.Inc()
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
