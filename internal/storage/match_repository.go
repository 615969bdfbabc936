package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchflix/internal/models"
)

// MatchRepository stores the symmetric match rows. All writes go through the
// canonical pair, so at most one row can exist per unordered pair of users.
type MatchRepository interface {
	// CreateIfAbsent atomically materializes the match for the pair. The
	// insert races through the unique index: the loser of a concurrent
	// double-firing observes the winner's row and created=false.
	CreateIfAbsent(ctx context.Context, userA, userB string) (match *models.Match, created bool, err error)
	// GetByID returns the match or nil when it does not exist.
	GetByID(ctx context.Context, id string) (*models.Match, error)
	// GetByPair returns the pair's match or nil when it does not exist.
	GetByPair(ctx context.Context, userA, userB string) (*models.Match, error)
	// ListForUser returns the user's matches newest first, strictly older
	// than before when before is non-zero.
	ListForUser(ctx context.Context, userID string, before time.Time, limit int) ([]*models.Match, error)
	// DeleteWithTx removes the match row inside the given transaction.
	DeleteWithTx(ctx context.Context, tx *gorm.DB, matchID string) error

	// GetDB returns the underlying handle for transaction scoping.
	GetDB() *gorm.DB
}

type gormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a GORM-backed MatchRepository.
func NewGormMatchRepository(db *gorm.DB) MatchRepository {
	return &gormMatchRepository{db: db}
}

func (r *gormMatchRepository) CreateIfAbsent(ctx context.Context, userA, userB string) (*models.Match, bool, error) {
	match := &models.Match{User1ID: userA, User2ID: userB}
	match.EnsureCanonicalOrder()

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return match, true, nil
	}

	// Lost the race (or the pair was already matched): the unique index
	// guarantees the existing row is the one we wanted to create.
	existing, err := r.GetByPair(ctx, userA, userB)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *gormMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *gormMatchRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	user1, user2 := models.CanonicalPair(userA, userB)
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *gormMatchRepository) ListForUser(ctx context.Context, userID string, before time.Time, limit int) ([]*models.Match, error) {
	query := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC")
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var matches []*models.Match
	err := query.Find(&matches).Error
	return matches, err
}

func (r *gormMatchRepository) DeleteWithTx(ctx context.Context, tx *gorm.DB, matchID string) error {
	return tx.WithContext(ctx).Delete(&models.Match{}, "id = ?", matchID).Error
}

func (r *gormMatchRepository) GetDB() *gorm.DB {
	return r.db
}
