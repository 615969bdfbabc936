package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/models"
	"matchflix/internal/storage"
)

func TestCreateIfAbsentCanonicalAndIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMatchRepository(db)

	// Created with arguments in non-canonical order.
	match, created, err := repo.CreateIfAbsent(ctx, "zzz", "aaa")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "aaa", match.User1ID)
	assert.Equal(t, "zzz", match.User2ID)

	// Either argument order resolves to the same row.
	again, created, err := repo.CreateIfAbsent(ctx, "aaa", "zzz")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, match.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetByPairOrderInsensitive(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMatchRepository(db)

	match, _, err := repo.CreateIfAbsent(ctx, "a", "b")
	require.NoError(t, err)

	found, err := repo.GetByPair(ctx, "b", "a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, match.ID, found.ID)

	missing, err := repo.GetByPair(ctx, "a", "c")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListForUserCursor(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMatchRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, peer := range []string{"p1", "p2", "p3"} {
		m := models.Match{User1ID: "me", User2ID: peer}
		m.EnsureCanonicalOrder()
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&m).Error)
	}
	// A match the user is not part of.
	other := models.Match{User1ID: "x", User2ID: "y"}
	other.CreatedAt = base
	require.NoError(t, db.Create(&other).Error)

	matches, err := repo.ListForUser(ctx, "me", time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "p3", matches[0].OtherUser("me"))
	assert.Equal(t, "p2", matches[1].OtherUser("me"))

	// Page two: strictly older than the last seen row.
	older, err := repo.ListForUser(ctx, "me", matches[1].CreatedAt, 2)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "p1", older[0].OtherUser("me"))
}

func TestDeleteWithTx(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMatchRepository(db)

	match, _, err := repo.CreateIfAbsent(ctx, "a", "b")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteWithTx(ctx, db, match.ID))

	found, err := repo.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
