package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Eray464646/Algorithmen/internal/model"
	"github.com/Eray464646/Algorithmen/internal/service"
)

type contextKey string

const claimsKey contextKey = "playerClaims"

// AuthMiddleware guards player routes with the room-scoped JWT.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates auth middleware.
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequirePlayer validates the bearer token and stores its claims on the
// request context.
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidatePlayerToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the player claims stored by RequirePlayer.
func ClaimsFrom(ctx context.Context) (*model.PlayerClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*model.PlayerClaims)
	return claims, ok
}
