package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"matchflix/internal/models"
)

// MessageRepository is the durable, time-ordered message log. created_at is
// the only sort and cursor key; callers page backward from the newest row.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListBefore returns up to limit messages of the match, newest first,
	// strictly older than before when before is non-zero.
	ListBefore(ctx context.Context, matchID string, before time.Time, limit int) ([]*models.Message, error)
	// LatestForMatch returns the newest message of the match, or nil when the
	// conversation is empty.
	LatestForMatch(ctx context.Context, matchID string) (*models.Message, error)
	// MarkRead flips every unread message of the match not sent by readerID
	// to read. Returns the number of rows transitioned.
	MarkRead(ctx context.Context, matchID, readerID string) (int64, error)
	// CountUnread counts unread messages addressed to the user across all of
	// their matches.
	CountUnread(ctx context.Context, userID string) (int64, error)
	// DeleteByMatchWithTx purges the match's messages inside the given
	// transaction. Used by unmatch.
	DeleteByMatchWithTx(ctx context.Context, tx *gorm.DB, matchID string) error
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a GORM-backed MessageRepository.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *gormMessageRepository) ListBefore(ctx context.Context, matchID string, before time.Time, limit int) ([]*models.Message, error) {
	query := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC")
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []*models.Message
	err := query.Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) LatestForMatch(ctx context.Context, matchID string) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, matchID, readerID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_id <> ? AND read = ?", matchID, readerID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *gormMessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN matches ON matches.id = messages.match_id").
		Where("(matches.user1_id = ? OR matches.user2_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *gormMessageRepository) DeleteByMatchWithTx(ctx context.Context, tx *gorm.DB, matchID string) error {
	return tx.WithContext(ctx).Where("match_id = ?", matchID).Delete(&models.Message{}).Error
}
