package chi

import (
	"net/http"
	"strings"
)

// isExempt reports whether a path bypasses authentication. Health and
// metrics stay reachable for probes and scrapers.
func isExempt(path string) bool {
	return path == "/health" || path == "/metrics"
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens
// against the configured key set. An empty key list disables
// authentication entirely.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "authorization header must carry a Bearer token")
				return
			}
			if _, known := validKeys[token]; !known {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	return token, token != ""
}
