// Package auth guards the scrape endpoint with an optional bearer token.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Bearer returns middleware that requires "Authorization: Bearer <token>".
// An empty token disables the check.
func Bearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="metrics"`)
				http.Error(w, "missing scrape token", http.StatusUnauthorized)
				return
			}

			got := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "invalid scrape token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
