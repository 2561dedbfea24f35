package services

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// MessageService mutates a conversation's embedded message list: append,
// edit-in-place and truncate-from-point. Every mutation rederives the
// aggregate statistics it is contracted to and persists the whole aggregate
// in one version-checked patch.
type MessageService interface {
	// AddMessage appends a message with a fresh opaque id. Provider/model
	// default from the conversation; assistant messages get response start
	// and end stamps equal to the append time. Attachments are run through
	// the ingestion collaborator and carry its outcome as opaque text.
	AddMessage(ctx context.Context, userID, conversationID string, req *AddMessageRequest) (*models.Conversation, error)

	// UpdateMessage replaces one message's content, preserving every other
	// field. Aggregate token/speed stats are not recomputed; only
	// updated_at moves.
	UpdateMessage(ctx context.Context, userID, conversationID, messageID, content string) (*models.Conversation, error)

	// DeleteMessagesFrom truncates the list to the prefix ending at (and
	// including) fromMessageID, supporting retry-from-a-point. An absent id
	// is domain.ErrNotFound and leaves the stored aggregate untouched.
	DeleteMessagesFrom(ctx context.Context, userID, conversationID, fromMessageID string) (*models.Conversation, error)
}

// AddMessageRequest is the DTO for appending a message.
type AddMessageRequest struct {
	Role           string              `json:"role"`
	Content        string              `json:"content"`
	Provider       *string             `json:"provider,omitempty"`
	Model          *string             `json:"model,omitempty"`
	TokenCount     *int                `json:"token_count,omitempty"`
	InferenceSpeed *float64            `json:"inference_speed,omitempty"`
	Attachments    []models.Attachment `json:"attachments,omitempty"`
	ToolsUsed      []models.ToolUse    `json:"tools_used,omitempty"`
}
