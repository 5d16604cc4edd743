// internal/api/middleware.go
package api

import (
	"context"
	"net/http"
	"strings"

	"gibwerk/internal/auth"
	custom_errors "gibwerk/internal/errors"
)

type contextKey string

const githubTokenKey contextKey = "githubToken"

// TokenParser validates session tokens.
type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

// requireAuth rejects requests without a valid bearer session token and
// stores the GitHub token from its claims in the request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithServiceError(w, h.logger, &custom_errors.UnauthorizedError{Message: "Authorization header required"})
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			respondWithServiceError(w, h.logger, &custom_errors.UnauthorizedError{Message: "Invalid authorization header format"})
			return
		}

		claims, err := h.tokens.Parse(tokenParts[1])
		if err != nil {
			respondWithServiceError(w, h.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), githubTokenKey, claims.GithubToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func githubToken(ctx context.Context) string {
	token, _ := ctx.Value(githubTokenKey).(string)
	return token
}
