package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/storage"
)

func TestGetByEmailPreloadsProfile(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormUserRepository(db)

	created := createUser(t, db, "ada@example.com", "Ada")

	user, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "Ada", user.Profile.Name)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListProfilesByUserIDs(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormUserRepository(db)

	ada := createUser(t, db, "ada@example.com", "Ada")
	bob := createUser(t, db, "bob@example.com", "Bob")
	createUser(t, db, "eve@example.com", "Eve")

	profiles, err := repo.ListProfilesByUserIDs(ctx, []string{ada.ID, bob.ID})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ada", profiles[ada.ID].Name)
	assert.Equal(t, "Bob", profiles[bob.ID].Name)
}

func TestListCandidateProfilesExclusions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormUserRepository(db)

	me := createUser(t, db, "me@example.com", "Me")
	seen := createUser(t, db, "seen@example.com", "Seen")
	fresh := createUser(t, db, "fresh@example.com", "Fresh")

	candidates, err := repo.ListCandidateProfiles(ctx, me.ID, []string{seen.ID}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, fresh.ID, candidates[0].UserID)
}
