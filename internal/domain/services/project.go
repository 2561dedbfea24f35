package services

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// ProjectService owns project CRUD and the default-project invariant.
type ProjectService interface {
	List(ctx context.Context, userID string) ([]models.Project, error)

	// Get returns one of the user's projects; missing and not-owned are both
	// domain.ErrNotFound.
	Get(ctx context.Context, userID, projectID string) (*models.Project, error)

	Create(ctx context.Context, userID string, req *CreateProjectRequest) (*models.Project, error)

	// EnsureDefault returns the user's default project, lazily creating it
	// on first use. Safe under concurrent first-time creation: the schema
	// allows one default per user and losers of the race re-read the winner.
	EnsureDefault(ctx context.Context, userID string) (*models.Project, error)

	// Update patches name/description/archive state. Archiving the default
	// project fails with domain.ErrInvariant.
	Update(ctx context.Context, userID, projectID string, req *UpdateProjectRequest) (*models.Project, error)

	// Delete soft-deletes a project and every conversation in it, in one
	// transaction. Deleting the default project fails with
	// domain.ErrInvariant.
	Delete(ctx context.Context, userID, projectID string) (*models.Project, error)
}

// CreateProjectRequest is the DTO for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateProjectRequest is the DTO for patching a project. Nil fields are
// left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}
