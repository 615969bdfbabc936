package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/errs"
	"matchflix/internal/models"
	"matchflix/internal/services"
)

func TestProfileUpdateAppliesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewProfileService(f.userRepo)

	me := f.user(t, "Ada")

	bio := "Film nerd"
	films := []string{"Stalker", "Playtime"}
	updated, err := svc.Update(ctx, me.ID, &models.ProfileUpdate{Bio: &bio, TopFilms: &films})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name) // untouched
	assert.Equal(t, "Film nerd", updated.Bio)
	assert.Equal(t, films, updated.TopFilms())

	// Persisted, not just returned.
	own, err := svc.GetOwn(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, "Film nerd", own.Bio)
}

func TestProfileUpdateValidatesAge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewProfileService(f.userRepo)

	me := f.user(t, "Ada")
	age := 12
	_, err := svc.Update(ctx, me.ID, &models.ProfileUpdate{Age: &age})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestGetPublicUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewProfileService(f.userRepo)

	_, err := svc.GetPublic(ctx, "ghost")
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
