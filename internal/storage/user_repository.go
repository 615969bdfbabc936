package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"matchflix/internal/models"
)

// UserRepository provides account and profile reads plus the candidate query
// backing the discovery feed.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
	// ListProfilesByUserIDs returns the profiles of the given users, keyed in
	// the result by user ID.
	ListProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.Profile, error)
	// ListCandidateProfiles returns up to limit profiles excluding the user
	// themselves and every ID in excluded.
	ListCandidateProfiles(ctx context.Context, userID string, excluded []string, limit int) ([]*models.Profile, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a GORM-backed UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *gormUserRepository) ListProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	byUser := make(map[string]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return byUser, nil
	}
	var profiles []*models.Profile
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		byUser[p.UserID] = p
	}
	return byUser, nil
}

func (r *gormUserRepository) ListCandidateProfiles(ctx context.Context, userID string, excluded []string, limit int) ([]*models.Profile, error) {
	query := r.db.WithContext(ctx).Where("user_id <> ?", userID)
	if len(excluded) > 0 {
		query = query.Where("user_id NOT IN ?", excluded)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var profiles []*models.Profile
	err := query.Find(&profiles).Error
	return profiles, err
}
