package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// ConversationHandler handles conversation HTTP requests
type ConversationHandler struct {
	identity      services.IdentityService
	conversations services.ConversationService
	logger        *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(identity services.IdentityService, conversations services.ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		identity:      identity,
		conversations: conversations,
		logger:        logger,
	}
}

// ListConversations lists the caller's conversations without message bodies
// GET /api/conversations?project_id=&limit=
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	conversations, err := h.conversations.List(r.Context(), user.ID, optionalString(r, "project_id"), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversations)
}

// SearchConversations substring-searches titles and message contents
// GET /api/conversations/search?q=&project_id=&limit=
func (h *ConversationHandler) SearchConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.conversations.Search(r.Context(), user.ID, r.URL.Query().Get("q"), optionalString(r, "project_id"), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}

// CreateConversation creates a new conversation
// POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.CreateConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.conversations.Create(r.Context(), user.ID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, conv)
}

// GetConversation retrieves one conversation with its full message list
// GET /api/conversations/{id}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	conv, err := h.conversations.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}

// UpdateConversation patches conversation metadata and flags
// PATCH /api/conversations/{id}
func (h *ConversationHandler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.UpdateConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.conversations.Update(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}

// DeleteConversation soft-deletes a conversation
// DELETE /api/conversations/{id}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	if err := h.conversations.Remove(r.Context(), user.ID, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BranchConversation copies the history up to a message into a new conversation
// POST /api/conversations/{id}/branch
func (h *ConversationHandler) BranchConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.BranchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	branch, err := h.conversations.Branch(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, branch)
}
