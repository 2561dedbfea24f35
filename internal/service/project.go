package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
)

// projectService implements the ProjectService interface
type projectService struct {
	projects      repositories.ProjectRepository
	conversations repositories.ConversationRepository
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projects repositories.ProjectRepository,
	conversations repositories.ConversationRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projects:      projects,
		conversations: conversations,
		txManager:     txManager,
		logger:        logger,
	}
}

// List retrieves all of the user's projects
func (s *projectService) List(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projects.List(ctx, userID)
}

// Get retrieves one of the user's projects
func (s *projectService) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	return s.projects.GetByID(ctx, projectID, userID)
}

// Create creates a new (non-default) project
func (s *projectService) Create(ctx context.Context, userID string, req *services.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateProjectRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	project := &models.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"name", project.Name,
		"user_id", userID,
	)

	return project, nil
}

// EnsureDefault returns the user's default project, creating it lazily on
// first use. The schema allows one default per user, so a concurrent
// first-time create loses the insert race cleanly and re-reads the winner -
// lazy creation is idempotent under concurrency.
func (s *projectService) EnsureDefault(ctx context.Context, userID string) (*models.Project, error) {
	project, err := s.projects.GetDefault(ctx, userID)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	project = &models.Project{
		UserID:    userID,
		Name:      models.DefaultProjectName,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	createErr := s.projects.Create(ctx, project)
	if createErr == nil {
		s.logger.Info("default project created", "id", project.ID, "user_id", userID)
		return project, nil
	}
	if errors.Is(createErr, domain.ErrConflict) {
		// Another request created it between our read and insert
		return s.projects.GetDefault(ctx, userID)
	}
	return nil, createErr
}

// Update patches a project. The default project cannot be archived.
func (s *projectService) Update(ctx context.Context, userID, projectID string, req *services.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateProjectRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projects.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if req.IsArchived != nil && *req.IsArchived && project.IsDefault {
		return nil, &domain.InvariantError{Message: "the default project cannot be archived"}
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsArchived != nil {
		project.IsArchived = *req.IsArchived
	}
	project.UpdatedAt = time.Now()

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "id", project.ID, "user_id", userID)

	return project, nil
}

// Delete soft-deletes a project together with its conversations. The default
// project cannot be deleted.
func (s *projectService) Delete(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if project.IsDefault {
		return nil, &domain.InvariantError{Message: "the default project cannot be deleted"}
	}

	var deleted *models.Project
	var hidden int64
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		deleted, err = s.projects.Delete(txCtx, projectID, userID)
		if err != nil {
			return err
		}
		hidden, err = s.conversations.SoftDeleteByProject(txCtx, projectID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project deleted",
		"id", projectID,
		"conversations_hidden", hidden,
		"user_id", userID,
	)

	return deleted, nil
}

func (s *projectService) validateCreateProjectRequest(req *services.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
		),
	)
}

func (s *projectService) validateUpdateProjectRequest(req *services.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(0, config.MaxProjectNameLength)),
	)
}
