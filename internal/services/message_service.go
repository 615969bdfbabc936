package services

import (
	"context"
	"log"
	"strings"
	"time"

	"matchflix/internal/config"
	"matchflix/internal/errs"
	"matchflix/internal/events"
	"matchflix/internal/kafka"
	"matchflix/internal/models"
	"matchflix/internal/pagination"
	"matchflix/internal/redis"
	"matchflix/internal/storage"
)

const maxMessageLength = 2000

// ConversationSummary is one entry of the conversations list.
type ConversationSummary struct {
	MatchID     string                `json:"matchId"`
	User        *models.PublicProfile `json:"user"`
	LastMessage *models.Message       `json:"lastMessage,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// MessageService stores messages and hands them to the delivery topic for
// realtime fan-out.
type MessageService interface {
	// Send stores a message addressed to another user, materializing the
	// match for the pair if it does not exist yet.
	Send(ctx context.Context, senderID, receiverID, content string) (*models.MessageWithSender, error)
	// SendToMatch stores a message into a known match. Used by the relay;
	// the stored message reaches the sender through the delivery topic.
	SendToMatch(ctx context.Context, matchID, senderID, content string) error
	// CanAccessMatch reports whether the user participates in the match.
	CanAccessMatch(ctx context.Context, matchID, userID string) (bool, error)
	// ListMessages returns a page of the conversation in chronological order
	// and, as a side effect, marks the peer's messages as read.
	ListMessages(ctx context.Context, matchID, requesterID, cursor string, limit int) ([]*models.Message, string, bool, error)
	ListConversations(ctx context.Context, userID, cursor string, limit int) ([]*ConversationSummary, string, bool, error)
	// UnreadCount returns the total number of unread messages addressed to
	// the user, cache-first.
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type messageService struct {
	messageRepo storage.MessageRepository
	matchRepo   storage.MatchRepository
	userRepo    storage.UserRepository
	unreadCache redis.UnreadCountCache
	producer    kafka.MessageProducer
	kafkaCfg    config.KafkaConfig
}

// NewMessageService creates a MessageService.
func NewMessageService(
	messageRepo storage.MessageRepository,
	matchRepo storage.MatchRepository,
	userRepo storage.UserRepository,
	unreadCache redis.UnreadCountCache,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		matchRepo:   matchRepo,
		userRepo:    userRepo,
		unreadCache: unreadCache,
		producer:    producer,
		kafkaCfg:    kafkaCfg,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID, content string) (*models.MessageWithSender, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if receiverID == "" || receiverID == senderID {
		return nil, errs.Errorf(errs.EINVALID, "a receiver other than yourself is required")
	}
	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "user not found")
	}

	// Messaging a user implies a conversation; materialize the match if the
	// pair does not have one yet.
	match, created, err := s.matchRepo.CreateIfAbsent(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("[message] created match %s for first message between %s and %s", match.ID, senderID, receiverID)
	}

	return s.store(ctx, match, senderID, content)
}

func (s *messageService) SendToMatch(ctx context.Context, matchID, senderID, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match == nil {
		return errs.Errorf(errs.ENOTFOUND, "match not found")
	}
	if !match.HasParticipant(senderID) {
		return errs.Errorf(errs.EFORBIDDEN, "not a participant of this match")
	}

	_, err = s.store(ctx, match, senderID, content)
	return err
}

func (s *messageService) CanAccessMatch(ctx context.Context, matchID, userID string) (bool, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return false, err
	}
	return match != nil && match.HasParticipant(userID), nil
}

// store persists the message, bumps the recipient's unread cache and
// publishes the delivery record. Cache and publish failures do not undo the
// stored message.
func (s *messageService) store(ctx context.Context, match *models.Match, senderID, content string) (*models.MessageWithSender, error) {
	message := &models.Message{
		MatchID:  match.ID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	recipientID := match.OtherUser(senderID)
	if err := s.unreadCache.Increment(ctx, recipientID); err != nil {
		log.Printf("[message] unread cache increment failed for user %s: %v", recipientID, err)
	}

	withSender := &models.MessageWithSender{Message: *message}
	if profile, err := s.userRepo.GetProfileByUserID(ctx, senderID); err == nil && profile != nil {
		withSender.SenderName = profile.Name
		withSender.SenderPhotos = profile.Photos()
	}

	payload, err := events.Marshal(&events.Delivery{
		MatchID:     match.ID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     withSender,
	})
	if err != nil {
		return nil, err
	}
	// Keyed by match so fan-out preserves per-conversation order.
	if err := s.producer.SendMessage(ctx, s.kafkaCfg.DeliveryTopic, []byte(match.ID), payload); err != nil {
		// The message is stored; the recipient still sees it on the next
		// history fetch.
		log.Printf("[message] delivery publish failed for message %s: %v", message.ID, err)
	}

	return withSender, nil
}

func (s *messageService) ListMessages(ctx context.Context, matchID, requesterID, cursor string, limit int) ([]*models.Message, string, bool, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, "", false, err
	}
	if match == nil {
		return nil, "", false, errs.Errorf(errs.ENOTFOUND, "match not found")
	}
	if !match.HasParticipant(requesterID) {
		return nil, "", false, errs.Errorf(errs.EFORBIDDEN, "not a participant of this match")
	}

	before, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, "", false, errs.Errorf(errs.EINVALID, "invalid cursor")
	}
	limit = pagination.ClampLimit(limit)

	messages, err := s.messageRepo.ListBefore(ctx, matchID, before, limit+1)
	if err != nil {
		return nil, "", false, err
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	// Opening the conversation reads it. The pre-marking snapshot is what
	// the page reports.
	marked, err := s.messageRepo.MarkRead(ctx, matchID, requesterID)
	if err != nil {
		return nil, "", false, err
	}
	if marked > 0 {
		if err := s.unreadCache.Invalidate(ctx, requesterID); err != nil {
			log.Printf("[message] unread cache invalidation failed for user %s: %v", requesterID, err)
		}
	}

	nextCursor := ""
	if hasMore && len(messages) > 0 {
		// Oldest message of the page is last before the reversal.
		nextCursor = pagination.FormatCursor(messages[len(messages)-1].CreatedAt)
	}

	// Newest-first scan, chronological response.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nextCursor, hasMore, nil
}

func (s *messageService) ListConversations(ctx context.Context, userID, cursor string, limit int) ([]*ConversationSummary, string, bool, error) {
	before, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, "", false, errs.Errorf(errs.EINVALID, "invalid cursor")
	}
	limit = pagination.ClampLimit(limit)

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

	conversations := make([]*ConversationSummary, 0, len(matches))
	for _, m := range matches {
		conv := &ConversationSummary{MatchID: m.ID, CreatedAt: m.CreatedAt}
		if profile, ok := profiles[m.OtherUser(userID)]; ok {
			conv.User = profile.Public()
		}
		last, err := s.messageRepo.LatestForMatch(ctx, m.ID)
		if err != nil {
			return nil, "", false, err
		}
		conv.LastMessage = last
		conversations = append(conversations, conv)
	}

	nextCursor := ""
	if hasMore && len(matches) > 0 {
		nextCursor = pagination.FormatCursor(matches[len(matches)-1].CreatedAt)
	}
	return conversations, nextCursor, hasMore, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, found, err := s.unreadCache.Get(ctx, userID)
	if err != nil {
		log.Printf("[message] unread cache read failed for user %s: %v", userID, err)
	} else if found {
		return count, nil
	}

	count, err = s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.unreadCache.Set(ctx, userID, count); err != nil {
		log.Printf("[message] unread cache write failed for user %s: %v", userID, err)
	}
	return count, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Errorf(errs.EINVALID, "message content is required")
	}
	if len(content) > maxMessageLength {
		return errs.Errorf(errs.EINVALID, "message content exceeds %d characters", maxMessageLength)
	}
	return nil
}
