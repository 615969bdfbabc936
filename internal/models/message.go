package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one chat message inside a Match. CreatedAt is assigned at write
// time and is the sole ordering and pagination key, so it shares a composite
// index with MatchID; the base fields are spelled out instead of embedded to
// carry that tag. Read transitions false→true once, when the non-sender loads
// the conversation, and the row is never otherwise mutated.
type Message struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_messages_match_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	MatchID   string    `gorm:"type:uuid;not null;index:idx_messages_match_created,priority:1" json:"matchId"`
	SenderID  string    `gorm:"type:uuid;not null;index" json:"senderId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// MessageWithSender joins a message with the minimal sender display fields a
// chat view needs.
type MessageWithSender struct {
	Message
	SenderName   string   `json:"senderName"`
	SenderPhotos []string `json:"senderPhotos"`
}
