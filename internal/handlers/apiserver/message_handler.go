package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"matchflix/internal/errs"
	"matchflix/internal/middleware"
	"matchflix/internal/models"
	"matchflix/internal/services"
)

// MessageHandler handles message sending, history and unread counts.
type MessageHandler struct {
	messageService services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessagePayload defines the expected JSON body for POST /api/messages.
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// MessageListResponse is the body of GET /api/messages/{matchId}.
type MessageListResponse struct {
	Messages   []*models.Message `json:"messages"`
	NextCursor string            `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

// ConversationListResponse is the body of GET /api/messages/conversations.
type ConversationListResponse struct {
	Conversations []*services.ConversationSummary `json:"conversations"`
	NextCursor    string                          `json:"nextCursor,omitempty"`
	HasMore       bool                            `json:"hasMore"`
}

// SendMessageHandler handles POST /api/messages
func (h *MessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	var payload SendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "invalid request body"))
		return
	}
	defer r.Body.Close()

	message, err := h.messageService.Send(r.Context(), userID, payload.ReceiverID, payload.Content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, message)
}

// ListMessagesHandler handles GET /api/messages/{matchId}
func (h *MessageHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	cursor, limit := pageParams(r)
	messages, nextCursor, hasMore, err := h.messageService.ListMessages(r.Context(), mux.Vars(r)["matchId"], userID, cursor, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	writeJSONResponse(w, http.StatusOK, &MessageListResponse{
		Messages:   messages,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

// ListConversationsHandler handles GET /api/messages/conversations
func (h *MessageHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	cursor, limit := pageParams(r)
	conversations, nextCursor, hasMore, err := h.messageService.ListConversations(r.Context(), userID, cursor, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if conversations == nil {
		conversations = []*services.ConversationSummary{}
	}
	writeJSONResponse(w, http.StatusOK, &ConversationListResponse{
		Conversations: conversations,
		NextCursor:    nextCursor,
		HasMore:       hasMore,
	})
}

// UnreadCountHandler handles GET /api/messages/unread/count
func (h *MessageHandler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	count, err := h.messageService.UnreadCount(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]int64{"unreadCount": count})
}
