package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/auth"
	"matchflix/internal/config"
	"matchflix/internal/middleware"
)

func protected(t *testing.T, authCfg config.AuthConfig) (http.Handler, *string) {
	t.Helper()
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		require.True(t, ok)
		seenUserID = userID
		w.WriteHeader(http.StatusOK)
	})
	return middleware.AuthMiddleware(next, authCfg), &seenUserID
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	authCfg := config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}
	handler, seenUserID := protected(t, authCfg)

	token, err := auth.GenerateToken("user-1", "ada@example.com", authCfg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", *seenUserID)
}

func TestAuthMiddlewareRejectsBadRequests(t *testing.T) {
	authCfg := config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}
	handler, _ := protected(t, authCfg)

	cases := map[string]string{
		"missing header":   "",
		"not bearer":       "Basic abc123",
		"garbage token":    "Bearer not.a.jwt",
		"wrong key":        "",
		"malformed header": "Bearer",
	}
	wrongKeyToken, err := auth.GenerateToken("user-1", "ada@example.com",
		config.AuthConfig{JWTSecretKey: "other-secret", JWTExpiry: time.Hour})
	require.NoError(t, err)
	cases["wrong key"] = "Bearer " + wrongKeyToken

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
