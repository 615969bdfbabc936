package chatserver

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"matchflix/internal/auth"
	"matchflix/internal/config"
	ws "matchflix/internal/websocket"
)

// WebSocketHandler upgrades authenticated HTTP requests to WebSocket
// connections and attaches them to the hub.
type WebSocketHandler struct {
	hub      *ws.Hub
	relay    ws.Relay
	cfg      config.Config
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, relay ws.Relay, cfg config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		relay: relay,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origins are enforced at the edge; tokens gate access
			// here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /ws?token=...
// Authentication is mandatory: a missing or invalid token rejects the
// request before the upgrade.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(token, h.cfg.Auth.JWTSecretKey)
	if err != nil {
		log.Printf("[ws] rejected connection with invalid token: %v", err)
		http.Error(w, "invalid authentication token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	log.Printf("[ws] user %s connected", claims.UserID)
	client := ws.NewClient(h.hub, conn, h.relay, h.cfg.WebSocket, claims.UserID)
	client.Start()
}
