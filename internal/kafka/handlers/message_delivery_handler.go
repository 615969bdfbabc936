// Package handlers contains the chat server's Kafka consumer handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"matchflix/internal/events"
	"matchflix/internal/websocket"
)

// MessageDeliveryHandler consumes delivery records published by the API
// server and hands them to the hub for fan-out.
type MessageDeliveryHandler struct {
	hub *websocket.Hub
}

// NewMessageDeliveryHandler creates a handler bound to the given hub.
func NewMessageDeliveryHandler(hub *websocket.Hub) *MessageDeliveryHandler {
	return &MessageDeliveryHandler{hub: hub}
}

// Handle decodes one delivery record and forwards it. A malformed record is
// logged and skipped rather than returned as an error, so the offset still
// commits and the partition does not wedge on a poison message.
func (h *MessageDeliveryHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	var delivery events.Delivery
	if err := json.Unmarshal(msg.Value, &delivery); err != nil {
		log.Printf("[delivery] skipping malformed record at %v: %v", msg.TopicPartition, err)
		return nil
	}
	if delivery.Message == nil || delivery.MatchID == "" {
		log.Printf("[delivery] skipping incomplete record at %v", msg.TopicPartition)
		return nil
	}

	h.hub.Deliver(&delivery)
	return nil
}
