package repositories

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error

	// GetByID returns the project only when it exists, is owned by userID
	// and is not soft-deleted; otherwise domain.ErrNotFound.
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)

	// GetDefault returns the user's default project, or domain.ErrNotFound
	// when none has been created yet.
	GetDefault(ctx context.Context, userID string) (*models.Project, error)

	List(ctx context.Context, userID string) ([]models.Project, error)

	Update(ctx context.Context, project *models.Project) error

	// Delete soft-deletes a project and returns the deleted record.
	Delete(ctx context.Context, id, userID string) (*models.Project, error)
}
