package handler

import (
	"log/slog"
	"net/http"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// MessageHandler handles message mutation HTTP requests. Every mutation
// returns the full updated conversation aggregate.
type MessageHandler struct {
	identity services.IdentityService
	messages services.MessageService
	logger   *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(identity services.IdentityService, messages services.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		identity: identity,
		messages: messages,
		logger:   logger,
	}
}

// AddMessage appends a message to the conversation
// POST /api/conversations/{id}/messages
func (h *MessageHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.AddMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.messages.AddMessage(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, conv)
}

type updateMessageRequest struct {
	Content string `json:"content"`
}

// UpdateMessage replaces one message's content
// PATCH /api/conversations/{id}/messages/{messageId}
func (h *MessageHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req updateMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.messages.UpdateMessage(r.Context(), user.ID, r.PathValue("id"), r.PathValue("messageId"), req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}

// TruncateMessages discards every message after the named one
// POST /api/conversations/{id}/messages/{messageId}/truncate
func (h *MessageHandler) TruncateMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	conv, err := h.messages.DeleteMessagesFrom(r.Context(), user.ID, r.PathValue("id"), r.PathValue("messageId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}
