package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchflix/internal/errs"
	"matchflix/internal/models"
)

func TestLikeWithoutReciprocity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Ada"), f.user(t, "Bob")

	result, err := f.matchService.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, result.NewlyLiked)
	assert.False(t, result.IsMatch)
	assert.Nil(t, result.Match)

	var count int64
	require.NoError(t, f.db.Model(&models.Match{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestReciprocalLikeCreatesOneMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Ada"), f.user(t, "Bob")

	_, err := f.matchService.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)

	result, err := f.matchService.Like(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, result.IsMatch)
	require.NotNil(t, result.Match)
	assert.True(t, result.Match.User1ID < result.Match.User2ID)
	assert.True(t, result.Match.HasParticipant(a.ID))
	assert.True(t, result.Match.HasParticipant(b.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepeatLikeShortCircuits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Ada"), f.user(t, "Bob")

	_, err := f.matchService.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.matchService.Like(ctx, b.ID, a.ID)
	require.NoError(t, err)

	// Repeating an already-recorded like reports nothing new, even though
	// the pair is matched.
	result, err := f.matchService.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, result.NewlyLiked)
	assert.False(t, result.IsMatch)

	var count int64
	require.NoError(t, f.db.Model(&models.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSelfInteractionRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "Ada")

	_, err := f.matchService.Like(ctx, a.ID, a.ID)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = f.matchService.Pass(ctx, a.ID, a.ID)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestLikeUnknownTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "Ada")

	_, err := f.matchService.Like(ctx, a.ID, "does-not-exist")
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestPassNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Ada"), f.user(t, "Bob")

	require.NoError(t, f.matchService.Pass(ctx, a.ID, b.ID))

	result, err := f.matchService.Like(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, result.IsMatch)
}

func TestUnmatchPurgesMatchState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Ada"), f.user(t, "Bob")

	_, err := f.matchService.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)
	result, err := f.matchService.Like(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.True(t, result.IsMatch)

	_, err = f.messageService.Send(ctx, a.ID, b.ID, "hey")
	require.NoError(t, err)

	// A pass from an unrelated flow survives unmatch.
	c := f.user(t, "Cam")
	require.NoError(t, f.matchService.Pass(ctx, a.ID, c.ID))

	require.NoError(t, f.matchService.Unmatch(ctx, a.ID, b.ID))

	var matchCount, likeCount, messageCount, passCount int64
	require.NoError(t, f.db.Model(&models.Match{}).Count(&matchCount).Error)
	require.NoError(t, f.db.Model(&models.Like{}).Count(&likeCount).Error)
	require.NoError(t, f.db.Model(&models.Message{}).Count(&messageCount).Error)
	require.NoError(t, f.db.Model(&models.Pass{}).Count(&passCount).Error)
	assert.Equal(t, int64(0), matchCount)
	assert.Equal(t, int64(0), likeCount)
	assert.Equal(t, int64(0), messageCount)
	assert.Equal(t, int64(1), passCount)

	// Nothing left to unmatch.
	err = f.matchService.Unmatch(ctx, a.ID, b.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestListMatchesPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	me := f.user(t, "Me")

	base := time.Now().UTC().Truncate(time.Millisecond)
	peers := []*models.User{f.user(t, "P1"), f.user(t, "P2"), f.user(t, "P3")}
	for i, peer := range peers {
		m := models.Match{User1ID: me.ID, User2ID: peer.ID}
		m.EnsureCanonicalOrder()
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.db.Create(&m).Error)
	}

	page, nextCursor, hasMore, err := f.matchService.ListMatches(ctx, me.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, hasMore)
	require.NotEmpty(t, nextCursor)
	assert.Equal(t, "P3", page[0].User.Name)
	assert.Equal(t, "P2", page[1].User.Name)

	rest, _, hasMore, err := f.matchService.ListMatches(ctx, me.ID, nextCursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.False(t, hasMore)
	assert.Equal(t, "P1", rest[0].User.Name)
}

func TestListAdmirers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	me := f.user(t, "Me")
	fan1, fan2 := f.user(t, "Fan1"), f.user(t, "Fan2")

	_, err := f.matchService.Like(ctx, fan1.ID, me.ID)
	require.NoError(t, err)
	_, err = f.matchService.Like(ctx, fan2.ID, me.ID)
	require.NoError(t, err)

	admirers, err := f.matchService.ListAdmirers(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, admirers, 2)
	names := []string{admirers[0].Name, admirers[1].Name}
	assert.ElementsMatch(t, []string{"Fan1", "Fan2"}, names)
}
