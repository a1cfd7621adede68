package middleware

import (
	"net/http"
)

// preflightMaxAge is how long browsers may reuse a preflight answer, in seconds.
const preflightMaxAge = "600"

// CORSMiddleware lets browser tools call the API and the JSON-RPC endpoint.
// An empty list or a "*" entry allows every origin. Preflights are answered
// here; other OPTIONS requests reach the router.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if origin := r.Header.Get("Origin"); origin != "" {
				switch {
				case allowAll:
					h.Set("Access-Control-Allow-Origin", "*")
				case allowed[origin]:
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", RequestIDHeader+", X-Cache")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Max-Age", preflightMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
