package chi

import (
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// AuthMiddleware returns a middleware that validates client credentials. A
// request authenticates with either "Authorization: Bearer <key>" or an
// "X-API-Key" header; internal callers behind the gateway use the latter.
// If apiKeys is empty, authentication is disabled (pass-through).
func AuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key, errMsg := extractKey(r)
			if errMsg != "" {
				writeError(w, http.StatusUnauthorized, codeBadRequest, errMsg)
				return
			}

			if _, ok := validKeys[key]; !ok {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractKey(r *http.Request) (key, errMsg string) {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k, ""
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing credentials"
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", "authorization header must use Bearer scheme"
	}

	return auth[len(bearerPrefix):], ""
}
