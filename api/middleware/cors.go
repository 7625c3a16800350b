package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/maldonadorepuestos/storefront/pkg/config"
)

// CORS returns middleware that applies the configured allowed origins. A
// wildcard origin disables credentials, as browsers reject the combination.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.Origins()
	wildcard := len(origins) == 1 && origins[0] == "*"
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           cfg.MaxAgeSeconds,
	}).Handler
}
