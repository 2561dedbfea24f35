package repositories

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// ConversationFilter narrows conversation listings.
type ConversationFilter struct {
	// ProjectID scopes the listing to one project when non-nil.
	ProjectID *string

	// Limit caps the number of rows returned; 0 means no cap.
	Limit int

	// IncludeMessages controls whether the embedded message list is loaded.
	// Listings that only render metadata skip the JSONB column.
	IncludeMessages bool
}

// ConversationRepository persists conversation aggregates. The embedded
// message list travels with the row; a patch replaces the whole list in one
// write, guarded by the aggregate's version.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error

	// GetByID returns the aggregate (messages included) only when it
	// exists, is owned by userID and is not soft-deleted; otherwise
	// domain.ErrNotFound.
	GetByID(ctx context.Context, id, userID string) (*models.Conversation, error)

	// List returns the user's non-deleted conversations ordered by
	// updated_at descending.
	List(ctx context.Context, userID string, filter ConversationFilter) ([]models.Conversation, error)

	// Patch writes the aggregate back if and only if the stored version
	// still equals conv.Version; on success conv.Version is advanced.
	// A version mismatch surfaces as domain.ErrConflict, a missing or
	// soft-deleted row as domain.ErrNotFound.
	Patch(ctx context.Context, conv *models.Conversation) error

	// SoftDelete marks the conversation deleted without removing the row.
	SoftDelete(ctx context.Context, id, userID string) error

	// SoftDeleteByProject marks every non-deleted conversation in a project
	// deleted, returning how many were affected. Used when the project itself
	// is deleted.
	SoftDeleteByProject(ctx context.Context, projectID, userID string) (int64, error)
}
