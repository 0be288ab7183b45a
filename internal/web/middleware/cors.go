package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSOptions configures the CORS middleware.
type CORSOptions struct {
	AllowedOrigins   []string // exact origins, or "*" for any
	AllowCredentials bool
}

// CORS answers preflight requests and adds Access-Control headers for
// allowed origins. Requests from other origins pass through without CORS
// headers, leaving the browser to block them.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           600,
	})
}
