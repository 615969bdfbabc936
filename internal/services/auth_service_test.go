package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/auth"
	"matchflix/internal/config"
	"matchflix/internal/errs"
	"matchflix/internal/services"
)

func authFixture(t *testing.T) (*fixture, services.AuthService, config.AuthConfig) {
	t.Helper()
	f := newFixture(t)
	authCfg := config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}
	return f, services.NewAuthService(f.userRepo, authCfg), authCfg
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	_, svc, authCfg := authFixture(t)

	user, token, err := svc.Register(ctx, "Ada@Example.com", "correct horse", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "Ada", user.Profile.Name)

	claims, err := auth.ValidateToken(token, authCfg.JWTSecretKey)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// Login with the original (differently cased) email.
	logged, _, err := svc.Login(ctx, "ADA@example.COM", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := authFixture(t)

	_, _, err := svc.Register(ctx, "not-an-email", "long enough pw", "Ada")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	_, _, err = svc.Register(ctx, "ada@example.com", "short", "Ada")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	_, _, err = svc.Register(ctx, "ada@example.com", "long enough pw", "Ada")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "ada@example.com", "long enough pw", "Ada Again")
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := authFixture(t)

	_, _, err := svc.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	// Unknown account gets the same answer as a wrong password.
	_, _, err = svc.Login(ctx, "ghost@example.com", "whatever")
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}
