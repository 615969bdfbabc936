package middleware

import (
	"context"
	"net/http"
	"strings"

	"matchflix/internal/auth"
	"matchflix/internal/config"
	"matchflix/internal/errs"
)

// contextKey is a private type for context values to avoid key collisions.
type contextKey string

// UserIDKey is the context key holding the authenticated user's ID.
const UserIDKey contextKey = "userID"

// AuthMiddleware validates the bearer token and stores the authenticated
// identity in the request context. Downstream handlers trust this identity.
func AuthMiddleware(next http.Handler, authCfg config.AuthConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Missing authorization token."))
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Authorization header must be of the form Bearer {token}."))
			return
		}

		claims, err := auth.ValidateToken(headerParts[1], authCfg.JWTSecretKey)
		if err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token."))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext returns the authenticated user ID stored by
// AuthMiddleware, and whether one is present.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
