package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"matchflix/internal/models"
	"matchflix/internal/storage"
)

// seedMessage inserts a message with an explicit timestamp.
func seedMessage(t *testing.T, db *gorm.DB, matchID, senderID, content string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{MatchID: matchID, SenderID: senderID, Content: content}
	m.CreatedAt = at
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestMessagesCarryMatchCreatedIndex(t *testing.T) {
	db := setupTestDB(t)

	// The backward scan sorts on (match_id, created_at); migration must
	// produce the composite index backing it.
	assert.True(t, db.Migrator().HasIndex(&models.Message{}, "idx_messages_match_created"))
}

func TestListBeforeNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMessageRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seedMessage(t, db, "m1", "a", "first", base.Add(-3*time.Minute))
	seedMessage(t, db, "m1", "b", "second", base.Add(-2*time.Minute))
	seedMessage(t, db, "m1", "a", "third", base.Add(-1*time.Minute))
	seedMessage(t, db, "m2", "a", "other match", base)

	messages, err := repo.ListBefore(ctx, "m1", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Content)
	assert.Equal(t, "first", messages[2].Content)

	// Cursor is exclusive: nothing at or after it comes back.
	older, err := repo.ListBefore(ctx, "m1", messages[1].CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "first", older[0].Content)
}

func TestMarkReadOnlyPeerMessages(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMessageRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seedMessage(t, db, "m1", "peer", "hi", base.Add(-2*time.Minute))
	seedMessage(t, db, "m1", "peer", "there", base.Add(-1*time.Minute))
	mine := seedMessage(t, db, "m1", "me", "hello", base)

	marked, err := repo.MarkRead(ctx, "m1", "me")
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	// Already-read rows are not transitioned again.
	marked, err = repo.MarkRead(ctx, "m1", "me")
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	var own models.Message
	require.NoError(t, db.First(&own, "id = ?", mine.ID).Error)
	assert.False(t, own.Read)
}

func TestCountUnread(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMessageRepository(db)

	match := models.Match{User1ID: "me", User2ID: "peer"}
	match.EnsureCanonicalOrder()
	require.NoError(t, db.Create(&match).Error)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seedMessage(t, db, match.ID, "peer", "one", base.Add(-2*time.Minute))
	seedMessage(t, db, match.ID, "peer", "two", base.Add(-1*time.Minute))
	seedMessage(t, db, match.ID, "me", "mine", base)

	count, err := repo.CountUnread(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.MarkRead(ctx, match.ID, "me")
	require.NoError(t, err)

	count, err = repo.CountUnread(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestLatestForMatch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMessageRepository(db)

	latest, err := repo.LatestForMatch(ctx, "empty")
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seedMessage(t, db, "m1", "a", "old", base.Add(-time.Minute))
	seedMessage(t, db, "m1", "b", "new", base)

	latest, err = repo.LatestForMatch(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.Content)
}

func TestDeleteByMatchWithTx(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := storage.NewGormMessageRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seedMessage(t, db, "m1", "a", "one", base.Add(-time.Minute))
	seedMessage(t, db, "m1", "b", "two", base)
	keep := seedMessage(t, db, "m2", "a", "keep", base)

	require.NoError(t, repo.DeleteByMatchWithTx(ctx, db, "m1"))

	var remaining []models.Message
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
}
