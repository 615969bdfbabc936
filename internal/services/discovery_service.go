package services

import (
	"context"
	"time"

	"matchflix/internal/models"
	"matchflix/internal/storage"
)

const defaultDiscoveryLimit = 20

// DiscoveryService serves the swipe deck: profiles the user has not yet
// acted on.
type DiscoveryService interface {
	// Discover returns up to limit candidate profiles, excluding the user
	// themselves, everyone they already liked or passed on, and their
	// current matches.
	Discover(ctx context.Context, userID string, limit int) ([]*models.PublicProfile, error)
}

type discoveryService struct {
	userRepo        storage.UserRepository
	interactionRepo storage.InteractionRepository
	matchRepo       storage.MatchRepository
}

// NewDiscoveryService creates a DiscoveryService.
func NewDiscoveryService(
	userRepo storage.UserRepository,
	interactionRepo storage.InteractionRepository,
	matchRepo storage.MatchRepository,
) DiscoveryService {
	return &discoveryService{
		userRepo:        userRepo,
		interactionRepo: interactionRepo,
		matchRepo:       matchRepo,
	}
}

func (s *discoveryService) Discover(ctx context.Context, userID string, limit int) ([]*models.PublicProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultDiscoveryLimit
	}

	liked, err := s.interactionRepo.ListLikedTargets(ctx, userID)
	if err != nil {
		return nil, err
	}
	passed, err := s.interactionRepo.ListPassedTargets(ctx, userID)
	if err != nil {
		return nil, err
	}
	// A match can exist without a like when a first message created it, so
	// match peers are excluded separately.
	matches, err := s.matchRepo.ListForUser(ctx, userID, time.Time{}, 0)
	if err != nil {
		return nil, err
	}

	excluded := make([]string, 0, len(liked)+len(passed)+len(matches))
	excluded = append(excluded, liked...)
	excluded = append(excluded, passed...)
	for _, m := range matches {
		excluded = append(excluded, m.OtherUser(userID))
	}

	profiles, err := s.userRepo.ListCandidateProfiles(ctx, userID, excluded, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*models.PublicProfile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, p.Public())
	}
	return result, nil
}
