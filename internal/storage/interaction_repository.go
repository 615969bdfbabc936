package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchflix/internal/models"
)

// InteractionRepository is the durable ledger of directed like/pass actions.
// Both inserts are idempotent: re-recording an existing edge is a no-op and
// is reported through the returned "newly recorded" flag, never as an error.
type InteractionRepository interface {
	// RecordLike inserts the like edge if absent. Returns whether a new row
	// was written.
	RecordLike(ctx context.Context, fromUserID, toUserID string) (bool, error)
	// RecordPass inserts the pass edge if absent. Returns whether a new row
	// was written.
	RecordPass(ctx context.Context, fromUserID, toUserID string) (bool, error)
	// HasLike reports whether the directed like edge exists.
	HasLike(ctx context.Context, fromUserID, toUserID string) (bool, error)
	// ListLikedTargets returns the IDs the user has liked, unordered.
	ListLikedTargets(ctx context.Context, fromUserID string) ([]string, error)
	// ListPassedTargets returns the IDs the user has passed on, unordered.
	ListPassedTargets(ctx context.Context, fromUserID string) ([]string, error)
	// ListAdmirers returns the likes pointing at the user, newest first.
	ListAdmirers(ctx context.Context, toUserID string) ([]*models.Like, error)
	// DeleteMutualLikesWithTx removes both directional like rows between the
	// pair inside the given transaction. Pass rows are left alone.
	DeleteMutualLikesWithTx(ctx context.Context, tx *gorm.DB, userA, userB string) error
}

type gormInteractionRepository struct {
	db *gorm.DB
}

// NewGormInteractionRepository creates a GORM-backed InteractionRepository.
func NewGormInteractionRepository(db *gorm.DB) InteractionRepository {
	return &gormInteractionRepository{db: db}
}

// Likes and passes are both directed edges keyed on the same column pair, so
// one insert-if-absent clause serves both tables.
var edgeConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
	DoNothing: true,
}

func (r *gormInteractionRepository) RecordLike(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	like := models.Like{FromUserID: fromUserID, ToUserID: toUserID}
	res := r.db.WithContext(ctx).Clauses(edgeConflict).Create(&like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormInteractionRepository) RecordPass(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	pass := models.Pass{FromUserID: fromUserID, ToUserID: toUserID}
	res := r.db.WithContext(ctx).Clauses(edgeConflict).Create(&pass)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormInteractionRepository) HasLike(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormInteractionRepository) ListLikedTargets(ctx context.Context, fromUserID string) ([]string, error) {
	var targets []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("from_user_id = ?", fromUserID).
		Pluck("to_user_id", &targets).Error
	return targets, err
}

func (r *gormInteractionRepository) ListPassedTargets(ctx context.Context, fromUserID string) ([]string, error) {
	var targets []string
	err := r.db.WithContext(ctx).Model(&models.Pass{}).
		Where("from_user_id = ?", fromUserID).
		Pluck("to_user_id", &targets).Error
	return targets, err
}

func (r *gormInteractionRepository) ListAdmirers(ctx context.Context, toUserID string) ([]*models.Like, error) {
	var likes []*models.Like
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", toUserID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}

func (r *gormInteractionRepository) DeleteMutualLikesWithTx(ctx context.Context, tx *gorm.DB, userA, userB string) error {
	return tx.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Delete(&models.Like{}).Error
}
