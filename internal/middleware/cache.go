package middleware

import (
	"net/http"
	"strings"
)

// CacheControl sets Cache-Control headers based on request path:
// - location lookups change rarely and cache for 1 hour
// - other GET API endpoints cache for 1 minute with revalidation
// - everything else (mutations, callbacks, metrics) is never cached
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
			return
		}

		path := r.URL.Path
		switch {
		case strings.HasPrefix(path, "/api/v1/locations/"):
			w.Header().Set("Cache-Control", "public, max-age=3600")
		case strings.HasPrefix(path, "/api/v1/onboarding/"):
			// Session state and the payment callback must always be fresh.
			w.Header().Set("Cache-Control", "no-store")
		case strings.HasPrefix(path, "/api/"):
			w.Header().Set("Cache-Control", "public, max-age=60, must-revalidate")
		default:
			w.Header().Set("Cache-Control", "no-store")
		}

		next.ServeHTTP(w, r)
	})
}
