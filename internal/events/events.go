// Package events defines the wire shapes shared by the realtime relay and
// the Kafka delivery topic. Handlers, services and the websocket layer all
// import these instead of each other.
package events

import (
	"encoding/json"

	"matchflix/internal/models"
)

// Inbound event types (client → relay).
const (
	EventJoinMatch   = "join_match"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
)

// Outbound event types (relay → client).
const (
	EventNewMessage   = "new_message"
	EventNotification = "notification"
	EventUserTyping   = "user_typing"
	EventError        = "error"
)

// ClientEvent is the single inbound frame shape. Fields beyond Type are
// populated depending on the event.
type ClientEvent struct {
	Type     string `json:"type"`
	MatchID  string `json:"matchId,omitempty"`
	Content  string `json:"content,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// NewMessageEvent delivers a stored message to a match group.
type NewMessageEvent struct {
	Type    string                    `json:"type"`
	Message *models.MessageWithSender `json:"message"`
}

// NotificationEvent is the out-of-band nudge sent to the recipient's
// personal group so unread badges update without the chat open.
type NotificationEvent struct {
	Type             string                    `json:"type"`
	NotificationType string                    `json:"notificationType"`
	MatchID          string                    `json:"matchId"`
	Message          *models.MessageWithSender `json:"message,omitempty"`
}

// UserTypingEvent is the ephemeral typing indicator. Never persisted.
type UserTypingEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorEvent reports a failed request back on the same connection without
// closing it.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Delivery is the record published to the Kafka delivery topic for every
// stored message. The chat server consumes it and fans the message out to
// the match group plus the recipient's personal group.
type Delivery struct {
	MatchID     string                    `json:"matchId"`
	SenderID    string                    `json:"senderId"`
	RecipientID string                    `json:"recipientId"`
	Message     *models.MessageWithSender `json:"message"`
}

// Marshal is a convenience wrapper used at the broadcast call sites.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
