package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/authsession/jwt"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the claims injected by Guard.
func ClaimsFromContext(ctx context.Context) (*jwt.SessionClaims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(*jwt.SessionClaims)
	return c, ok
}

// Verifier parses and verifies a bearer token. *jwt.Manager implements it.
type Verifier interface {
	Parse(token string) (*jwt.SessionClaims, error)
}

// Guard rejects requests without a valid bearer token with 401.
func Guard(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.Parse(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
