package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"matchflix/internal/config"
	"matchflix/internal/events"
)

// Relay is what the client needs from the service layer to handle inbound
// frames. The message service implements it.
type Relay interface {
	// CanAccessMatch reports whether the user participates in the match.
	CanAccessMatch(ctx context.Context, matchID, userID string) (bool, error)
	// SendToMatch persists a message and publishes it for fan-out.
	SendToMatch(ctx context.Context, matchID, senderID, content string) error
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	relay Relay
	cfg   config.WebSocketConfig

	// Buffered channel of outbound frames.
	send chan []byte

	// UserID is the authenticated owner of the connection.
	UserID string
}

// NewClient wraps an upgraded connection. The caller registers it with the
// hub and starts the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, relay Relay, cfg config.WebSocketConfig, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		relay:  relay,
		cfg:    cfg,
		send:   make(chan []byte, 256),
		UserID: userID,
	}
}

// Start registers the client and launches its pumps.
func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// readPump pumps frames from the websocket connection to the hub and the
// relay.
//
// The application runs readPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection by
// executing all reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	pongWait := time.Duration(c.cfg.PongWaitSeconds) * time.Second
	c.conn.SetReadLimit(int64(c.cfg.MaxMessageSizeBytes))
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.UserID, err)
			}
			return
		}

		var evt events.ClientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.sendError("invalid frame")
			continue
		}
		c.handleEvent(&evt)
	}
}

// handleEvent dispatches one inbound frame. All blocking work (DB lookups,
// message persistence) happens here on the connection's goroutine, never in
// the hub loop.
func (c *Client) handleEvent(evt *events.ClientEvent) {
	ctx := context.Background()

	switch evt.Type {
	case events.EventJoinMatch:
		if evt.MatchID == "" {
			return
		}
		ok, err := c.relay.CanAccessMatch(ctx, evt.MatchID, c.UserID)
		if err != nil {
			log.Printf("[ws] join check failed for user %s match %s: %v", c.UserID, evt.MatchID, err)
			return
		}
		if !ok {
			// Unauthorized joins are ignored without a reply.
			log.Printf("[ws] user %s denied join to match %s", c.UserID, evt.MatchID)
			return
		}
		c.hub.join <- joinRequest{client: c, matchID: evt.MatchID}

	case events.EventSendMessage:
		if evt.MatchID == "" || evt.Content == "" {
			c.sendError("matchId and content are required")
			return
		}
		if err := c.relay.SendToMatch(ctx, evt.MatchID, c.UserID, evt.Content); err != nil {
			log.Printf("[ws] send failed for user %s match %s: %v", c.UserID, evt.MatchID, err)
			c.sendError("failed to send message")
			return
		}
		// Fan-out, including the echo to this connection, arrives via the
		// delivery topic.

	case events.EventTyping:
		if evt.MatchID == "" {
			return
		}
		c.hub.typing <- typingRequest{client: c, matchID: evt.MatchID, isTyping: evt.IsTyping}

	default:
		c.sendError("unknown event type")
	}
}

// sendError queues an error frame without closing the connection.
func (c *Client) sendError(message string) {
	frame, err := events.Marshal(&events.ErrorEvent{Type: events.EventError, Message: message})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// writePump pumps frames from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	writeWait := time.Duration(c.cfg.WriteWaitSeconds) * time.Second
	pingPeriod := time.Duration(c.cfg.PingPeriodSeconds) * time.Second

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
