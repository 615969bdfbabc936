package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"matchflix/internal/errs"
	"matchflix/internal/models"
	"matchflix/internal/pagination"
	"matchflix/internal/redis"
	"matchflix/internal/storage"
)

// LikeResult describes the outcome of a like. NewlyLiked is false when the
// edge already existed; in that case no reciprocity check was run.
type LikeResult struct {
	NewlyLiked bool
	IsMatch    bool
	Match      *models.Match
}

// MatchSummary is one entry of the matches list: the match, the peer's
// profile and the latest message if any.
type MatchSummary struct {
	MatchID     string                `json:"matchId"`
	User        *models.PublicProfile `json:"user"`
	LastMessage *models.Message       `json:"lastMessage,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// MatchService resolves likes and passes into matches and manages their
// lifecycle.
type MatchService interface {
	Like(ctx context.Context, fromUserID, toUserID string) (*LikeResult, error)
	Pass(ctx context.Context, fromUserID, toUserID string) error
	// Unmatch dissolves the match with the other user: the match row, its
	// messages and both like edges go away in one transaction. Pass rows are
	// kept so the pair does not resurface in discovery.
	Unmatch(ctx context.Context, userID, otherUserID string) error
	ListMatches(ctx context.Context, userID, cursor string, limit int) ([]*MatchSummary, string, bool, error)
	// ListAdmirers returns the profiles of users who liked userID, newest
	// like first.
	ListAdmirers(ctx context.Context, userID string) ([]*models.PublicProfile, error)
}

type matchService struct {
	interactionRepo storage.InteractionRepository
	matchRepo       storage.MatchRepository
	messageRepo     storage.MessageRepository
	userRepo        storage.UserRepository
	unreadCache     redis.UnreadCountCache
}

// NewMatchService creates a MatchService.
func NewMatchService(
	interactionRepo storage.InteractionRepository,
	matchRepo storage.MatchRepository,
	messageRepo storage.MessageRepository,
	userRepo storage.UserRepository,
	unreadCache redis.UnreadCountCache,
) MatchService {
	return &matchService{
		interactionRepo: interactionRepo,
		matchRepo:       matchRepo,
		messageRepo:     messageRepo,
		userRepo:        userRepo,
		unreadCache:     unreadCache,
	}
}

func (s *matchService) Like(ctx context.Context, fromUserID, toUserID string) (*LikeResult, error) {
	if err := s.checkTarget(ctx, fromUserID, toUserID); err != nil {
		return nil, err
	}

	newlyLiked, err := s.interactionRepo.RecordLike(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if !newlyLiked {
		// Repeat of an earlier like. The reciprocity check already ran when
		// the edge was first recorded, so don't run it again.
		return &LikeResult{NewlyLiked: false}, nil
	}

	reciprocal, err := s.interactionRepo.HasLike(ctx, toUserID, fromUserID)
	if err != nil {
		return nil, err
	}
	if !reciprocal {
		return &LikeResult{NewlyLiked: true}, nil
	}

	match, created, err := s.matchRepo.CreateIfAbsent(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("[match] created match %s for users %s and %s", match.ID, match.User1ID, match.User2ID)
	}
	return &LikeResult{NewlyLiked: true, IsMatch: true, Match: match}, nil
}

func (s *matchService) Pass(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.checkTarget(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	_, err := s.interactionRepo.RecordPass(ctx, fromUserID, toUserID)
	return err
}

func (s *matchService) Unmatch(ctx context.Context, userID, otherUserID string) error {
	if userID == otherUserID {
		return errs.Errorf(errs.EINVALID, "cannot unmatch yourself")
	}

	match, err := s.matchRepo.GetByPair(ctx, userID, otherUserID)
	if err != nil {
		return err
	}
	if match == nil {
		return errs.Errorf(errs.ENOTFOUND, "no match with this user")
	}

	err = s.matchRepo.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := s.messageRepo.DeleteByMatchWithTx(ctx, tx, match.ID); err != nil {
			return err
		}
		if err := s.interactionRepo.DeleteMutualLikesWithTx(ctx, tx, userID, otherUserID); err != nil {
			return err
		}
		return s.matchRepo.DeleteWithTx(ctx, tx, match.ID)
	})
	if err != nil {
		return err
	}

	// Deleted messages may have been counted; drop both caches so the next
	// read recomputes.
	if err := s.unreadCache.Invalidate(ctx, userID); err != nil {
		log.Printf("[match] unread cache invalidation failed for user %s: %v", userID, err)
	}
	if err := s.unreadCache.Invalidate(ctx, otherUserID); err != nil {
		log.Printf("[match] unread cache invalidation failed for user %s: %v", otherUserID, err)
	}

	log.Printf("[match] user %s unmatched user %s (match %s)", userID, otherUserID, match.ID)
	return nil
}

func (s *matchService) ListMatches(ctx context.Context, userID, cursor string, limit int) ([]*MatchSummary, string, bool, error) {
	before, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, "", false, errs.Errorf(errs.EINVALID, "invalid cursor")
	}
	limit = pagination.ClampLimit(limit)

	// Fetch one extra row to learn whether an older page exists.
	matches, err := s.matchRepo.ListForUser(ctx, userID, before, limit+1)
	if err != nil {
		return nil, "", false, err
	}
	hasMore := len(matches) > limit
	if hasMore {
		matches = matches[:limit]
	}

	peerIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		peerIDs = append(peerIDs, m.OtherUser(userID))
	}
	profiles, err := s.userRepo.ListProfilesByUserIDs(ctx, peerIDs)
	if err != nil {
		return nil, "", false, err
	}

	summaries := make([]*MatchSummary, 0, len(matches))
	for _, m := range matches {
		summary := &MatchSummary{MatchID: m.ID, CreatedAt: m.CreatedAt}
		if profile, ok := profiles[m.OtherUser(userID)]; ok {
			summary.User = profile.Public()
		}
		last, err := s.messageRepo.LatestForMatch(ctx, m.ID)
		if err != nil {
			return nil, "", false, err
		}
		summary.LastMessage = last
		summaries = append(summaries, summary)
	}

	nextCursor := ""
	if hasMore && len(matches) > 0 {
		nextCursor = pagination.FormatCursor(matches[len(matches)-1].CreatedAt)
	}
	return summaries, nextCursor, hasMore, nil
}

func (s *matchService) ListAdmirers(ctx context.Context, userID string) ([]*models.PublicProfile, error) {
	likes, err := s.interactionRepo.ListAdmirers(ctx, userID)
	if err != nil {
		return nil, err
	}

	likerIDs := make([]string, 0, len(likes))
	for _, like := range likes {
		likerIDs = append(likerIDs, like.FromUserID)
	}
	profiles, err := s.userRepo.ListProfilesByUserIDs(ctx, likerIDs)
	if err != nil {
		return nil, err
	}

	// Preserve the newest-first like order.
	result := make([]*models.PublicProfile, 0, len(likes))
	for _, like := range likes {
		if profile, ok := profiles[like.FromUserID]; ok {
			result = append(result, profile.Public())
		}
	}
	return result, nil
}

// checkTarget rejects self-interaction and unknown targets.
func (s *matchService) checkTarget(ctx context.Context, fromUserID, toUserID string) error {
	if toUserID == "" {
		return errs.Errorf(errs.EINVALID, "target user is required")
	}
	if fromUserID == toUserID {
		return errs.Errorf(errs.EINVALID, "cannot interact with yourself")
	}
	target, err := s.userRepo.GetByID(ctx, toUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return errs.Errorf(errs.ENOTFOUND, "user not found")
	}
	return nil
}
