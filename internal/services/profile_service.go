package services

import (
	"context"

	"matchflix/internal/errs"
	"matchflix/internal/models"
	"matchflix/internal/storage"
)

// ProfileService reads and updates user profiles.
type ProfileService interface {
	// GetOwn returns the user's own profile.
	GetOwn(ctx context.Context, userID string) (*models.Profile, error)
	// GetPublic returns another user's profile in its public shape.
	GetPublic(ctx context.Context, userID string) (*models.PublicProfile, error)
	// Update applies a partial update to the user's profile.
	Update(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.Profile, error)
}

type profileService struct {
	userRepo storage.UserRepository
}

// NewProfileService creates a ProfileService.
func NewProfileService(userRepo storage.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

func (s *profileService) GetOwn(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.userRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "profile not found")
	}
	return profile, nil
}

func (s *profileService) GetPublic(ctx context.Context, userID string) (*models.PublicProfile, error) {
	profile, err := s.userRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "profile not found")
	}
	return profile.Public(), nil
}

func (s *profileService) Update(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.Profile, error) {
	if update.Age != nil && (*update.Age < 18 || *update.Age > 120) {
		return nil, errs.Errorf(errs.EINVALID, "age must be between 18 and 120")
	}

	profile, err := s.userRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "profile not found")
	}

	update.Apply(profile)
	if err := s.userRepo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
