package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"mythoughts/internal/config"
)

// CORS lets browser clients on the configured origins call the API.
// Returns nil when no origins are configured.
func CORS(cfg config.Server) func(http.Handler) http.Handler {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
}
