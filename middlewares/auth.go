package middlewares

import (
	"context"
	"net/http"
	"strings"

	"foodbuddies/auth"
	"foodbuddies/utils"
)

type contextKey string

// PhoneKey holds the authenticated phone number on the request context.
const PhoneKey contextKey = "phone"

// TokenGate verifies bearer tokens on every route except the public ones.
// A request carrying no Authorization header at all is passed through
// unauthenticated; only a token that is present but fails verification is
// rejected. Downstream handlers decide what anonymity means to them.
func TokenGate(tokens *auth.TokenService, publicPaths []string) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok || strings.HasPrefix(r.URL.Path, "/uploads/") {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				utils.HandleError(w, http.StatusForbidden, "Invalid token format")
				return
			}

			phone, err := tokens.Verify(tokenString)
			if err != nil {
				utils.HandleError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PhoneKey, phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
