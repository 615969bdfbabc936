package websocket

import (
	"log"

	"matchflix/internal/events"
)

// joinRequest admits an authorized client into a match group.
type joinRequest struct {
	client  *Client
	matchID string
}

// typingRequest relays a typing indicator to a match group, excluding the
// sender.
type typingRequest struct {
	client   *Client
	matchID  string
	isTyping bool
}

// Hub maintains the set of active clients and their group memberships, and
// fans stored messages out to them. All maps are owned by the Run goroutine;
// within one match group, broadcasts happen in the order deliveries arrive,
// which is write-completion order at the store.
type Hub struct {
	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Authorized join-match requests.
	join chan joinRequest

	// Typing indicators to relay. Never persisted.
	typing chan typingRequest

	// Stored messages to fan out, from the delivery topic consumer.
	deliveries chan *events.Delivery

	// Connected clients.
	clients map[*Client]bool

	// Personal groups: every connection a user currently holds. Joined
	// automatically on register, for out-of-band notifications.
	users map[string]map[*Client]bool

	// Match groups, joined explicitly via join_match.
	matches map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		typing:     make(chan typingRequest, 64),
		deliveries: make(chan *events.Delivery, 256),
		clients:    make(map[*Client]bool),
		users:      make(map[string]map[*Client]bool),
		matches:    make(map[string]map[*Client]bool),
	}
}

// Deliver hands a stored message to the hub for fan-out. Non-blocking so the
// Kafka consumer is never stalled by a full hub; an overloaded hub drops the
// delivery and clients recover state on their next history fetch.
func (h *Hub) Deliver(d *events.Delivery) {
	select {
	case h.deliveries <- d:
	default:
		log.Printf("[hub] delivery channel full, dropping message %s for match %s", d.Message.ID, d.MatchID)
	}
}

// Run starts the hub and listens for requests on its channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			group := h.users[client.UserID]
			if group == nil {
				group = make(map[*Client]bool)
				h.users[client.UserID] = group
			}
			group[client] = true

		case client := <-h.unregister:
			h.drop(client)

		case req := <-h.join:
			if !h.clients[req.client] {
				continue
			}
			group := h.matches[req.matchID]
			if group == nil {
				group = make(map[*Client]bool)
				h.matches[req.matchID] = group
			}
			group[req.client] = true

		case req := <-h.typing:
			group := h.matches[req.matchID]
			if group == nil || !group[req.client] {
				// Only members of the group may signal into it.
				continue
			}
			frame, err := events.Marshal(&events.UserTypingEvent{
				Type:     events.EventUserTyping,
				UserID:   req.client.UserID,
				IsTyping: req.isTyping,
			})
			if err != nil {
				continue
			}
			for client := range group {
				if client == req.client {
					continue
				}
				h.push(client, frame)
			}

		case d := <-h.deliveries:
			h.fanOut(d)
		}
	}
}

// fanOut broadcasts a stored message to its match group and a notification
// to every connection of the recipient.
func (h *Hub) fanOut(d *events.Delivery) {
	msgFrame, err := events.Marshal(&events.NewMessageEvent{
		Type:    events.EventNewMessage,
		Message: d.Message,
	})
	if err != nil {
		log.Printf("[hub] failed to marshal message %s: %v", d.Message.ID, err)
		return
	}
	for client := range h.matches[d.MatchID] {
		h.push(client, msgFrame)
	}

	noteFrame, err := events.Marshal(&events.NotificationEvent{
		Type:             events.EventNotification,
		NotificationType: events.EventNewMessage,
		MatchID:          d.MatchID,
		Message:          d.Message,
	})
	if err != nil {
		return
	}
	for client := range h.users[d.RecipientID] {
		h.push(client, noteFrame)
	}
}

// push sends a frame to one client, evicting it when its buffer is full. A
// connected session receives each frame at most once; a slow session loses
// the connection rather than stalling the hub.
func (h *Hub) push(client *Client, frame []byte) {
	select {
	case client.send <- frame:
	default:
		log.Printf("[hub] send buffer full for user %s, dropping client", client.UserID)
		h.drop(client)
	}
}

// drop removes a client from every group and closes its send channel.
// Memberships are not replayed on reconnect; the client re-fetches history
// over HTTP and re-joins its match groups.
func (h *Hub) drop(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)

	if group, ok := h.users[client.UserID]; ok {
		delete(group, client)
		if len(group) == 0 {
			delete(h.users, client.UserID)
		}
	}
	for matchID, group := range h.matches {
		delete(group, client)
		if len(group) == 0 {
			delete(h.matches, matchID)
		}
	}
	close(client.send)
}
