package auth

import (
	"context"
	"net/http"
	"slices"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// AuthenticateMiddleware rejects requests without a valid auth cookie and
// stores the verified claims in the request context.
type AuthenticateMiddleware struct {
	Secret []byte
}

func (m *AuthenticateMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		claims, err := VerifyUser(r, m.Secret)
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthenticatedUser returns the claims stored by AuthenticateMiddleware.
func GetAuthenticatedUser(r *http.Request) (*Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*Claims)
	return claims, ok
}

// RequireRole gates a route to users carrying one of the given roles.
// Admin passes everywhere.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims, ok := GetAuthenticatedUser(r)
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if slices.Contains(claims.Roles, "admin") {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if slices.Contains(claims.Roles, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
