package services

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// Listing defaults and caps.
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
)

// ConversationService owns the conversation aggregate: create, read, patch,
// soft delete, branch and search. Every operation takes the authenticated
// user's id; missing and not-owned conversations are both domain.ErrNotFound.
type ConversationService interface {
	// List returns the user's non-deleted conversations, newest-updated
	// first, optionally scoped to a project, capped at limit (default 50).
	// The embedded message lists are not loaded.
	List(ctx context.Context, userID string, projectID *string, limit int) ([]models.Conversation, error)

	Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error)

	// Create builds the aggregate: default project resolved or lazily
	// created when projectID is omitted, optional single seeded message,
	// derived title, all flags false, aggregates seeded from the zero/one
	// message state.
	Create(ctx context.Context, userID string, req *CreateConversationRequest) (*models.Conversation, error)

	// Update is a partial patch. Setting Title marks the title user-owned,
	// permanently disabling auto-rename.
	Update(ctx context.Context, userID, conversationID string, req *UpdateConversationRequest) (*models.Conversation, error)

	// Branch copies the message list up to and including fromMessageID into
	// a new conversation with the same owner, project, provider and model,
	// recording the lineage. Title defaults to "{original} (Branch)".
	Branch(ctx context.Context, userID, conversationID string, req *BranchRequest) (*models.Conversation, error)

	// Remove soft-deletes the conversation.
	Remove(ctx context.Context, userID, conversationID string) error

	// Search case-insensitively substring-matches query against titles and
	// message contents of the user's non-deleted conversations, sorted by
	// last_message_at descending, capped at limit (default 20). An empty or
	// whitespace query yields an empty result, not an error.
	Search(ctx context.Context, userID, query string, projectID *string, limit int) ([]models.Conversation, error)
}

// CreateConversationRequest is the DTO for creating a conversation.
type CreateConversationRequest struct {
	Title          string  `json:"title"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model"`
	ProjectID      *string `json:"project_id,omitempty"`
	InitialMessage *string `json:"initial_message,omitempty"`
}

// UpdateConversationRequest is the DTO for patching a conversation.
// Nil fields are left unchanged.
type UpdateConversationRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsPinned    *bool     `json:"is_pinned,omitempty"`
	IsArchived  *bool     `json:"is_archived,omitempty"`
	IsFavorite  *bool     `json:"is_favorite,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// BranchRequest is the DTO for branching a conversation at a message.
type BranchRequest struct {
	FromMessageID string  `json:"from_message_id"`
	Title         *string `json:"title,omitempty"`
}
