package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/krismatterz/ten-chat-sub000/internal/catalog"
	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
)

// DefaultConversationTitle is the title fallback when no content is available
// to derive one from.
const DefaultConversationTitle = "New Conversation"

// conversationService implements the ConversationService interface
type conversationService struct {
	conversations repositories.ConversationRepository
	projects      services.ProjectService
	catalog       *catalog.Registry
	cfg           *config.Config
	logger        *slog.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	conversations repositories.ConversationRepository,
	projects services.ProjectService,
	registry *catalog.Registry,
	cfg *config.Config,
	logger *slog.Logger,
) services.ConversationService {
	return &conversationService{
		conversations: conversations,
		projects:      projects,
		catalog:       registry,
		cfg:           cfg,
		logger:        logger,
	}
}

// List returns the user's non-deleted conversations without their message
// lists, newest-updated first.
func (s *conversationService) List(ctx context.Context, userID string, projectID *string, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = services.DefaultListLimit
	}

	return s.conversations.List(ctx, userID, repositories.ConversationFilter{
		ProjectID:       projectID,
		Limit:           limit,
		IncludeMessages: false,
	})
}

// Get returns one conversation with its full message list.
func (s *conversationService) Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	return s.conversations.GetByID(ctx, conversationID, userID)
}

// Create builds a new conversation aggregate. When no project is named the
// user's default project is resolved, creating it lazily on first use. An
// initial message seeds both the list and the derived title.
func (s *conversationService) Create(ctx context.Context, userID string, req *services.CreateConversationRequest) (*models.Conversation, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	provider := req.Provider
	if provider == "" {
		provider = s.cfg.DefaultProvider
	}
	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}
	if !s.catalog.Has(provider, model) {
		return nil, fmt.Errorf("%w: unknown model %s/%s", domain.ErrValidation, provider, model)
	}

	projectID, err := s.resolveProject(ctx, userID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	conv := &models.Conversation{
		UserID:    userID,
		ProjectID: projectID,
		Provider:  provider,
		Model:     model,
		Tags:      []string{},
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	content := ""
	if req.InitialMessage != nil && strings.TrimSpace(*req.InitialMessage) != "" {
		content = *req.InitialMessage
		conv.Messages = append(conv.Messages, models.Message{
			ID:        uuid.New().String(),
			Role:      models.RoleUser,
			Content:   content,
			Timestamp: now,
		})
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		conv.Title = title
		conv.TitleGenerated = false
	} else {
		conv.Title = DeriveTitle(DefaultConversationTitle, provider, model, content)
		conv.TitleGenerated = true
	}

	conv.RecomputeStats(now)

	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	s.logger.Info("conversation created",
		"id", conv.ID,
		"project_id", conv.ProjectID,
		"user_id", userID,
	)

	return conv, nil
}

// Update applies a partial patch. An explicit title clears the generated flag
// so auto-rename never overwrites a user-chosen title.
func (s *conversationService) Update(ctx context.Context, userID, conversationID string, req *services.UpdateConversationRequest) (*models.Conversation, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	conv, err := patchWithRetry(ctx, s.conversations, userID, conversationID, func(conv *models.Conversation) error {
		if req.Title != nil {
			conv.Title = strings.TrimSpace(*req.Title)
			conv.TitleGenerated = false
		}
		if req.Description != nil {
			conv.Description = *req.Description
		}
		if req.IsPinned != nil {
			conv.IsPinned = *req.IsPinned
		}
		if req.IsArchived != nil {
			conv.IsArchived = *req.IsArchived
		}
		if req.IsFavorite != nil {
			conv.IsFavorite = *req.IsFavorite
		}
		if req.Tags != nil {
			conv.Tags = *req.Tags
		}
		conv.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("conversation updated", "id", conversationID, "user_id", userID)

	return conv, nil
}

// Branch copies the message history up to and including the named message
// into a new conversation under the same project, provider and model,
// recording where it came from. The copy is independent: edits to either
// conversation never touch the other.
func (s *conversationService) Branch(ctx context.Context, userID, conversationID string, req *services.BranchRequest) (*models.Conversation, error) {
	if req.FromMessageID == "" {
		return nil, fmt.Errorf("%w: from_message_id is required", domain.ErrValidation)
	}

	original, err := s.conversations.GetByID(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	idx := original.FindMessage(req.FromMessageID)
	if idx < 0 {
		return nil, fmt.Errorf("message %s: %w", req.FromMessageID, domain.ErrNotFound)
	}

	title := original.Title + " (Branch)"
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}

	now := time.Now()
	branch := &models.Conversation{
		UserID:              userID,
		ProjectID:           original.ProjectID,
		Title:               title,
		Provider:            original.Provider,
		Model:               original.Model,
		Tags:                []string{},
		BranchedFrom:        &original.ID,
		BranchFromMessageID: &req.FromMessageID,
		Messages:            copyMessages(original.Messages[:idx+1]),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	branch.RecomputeStats(now)

	if err := s.conversations.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.logger.Info("conversation branched",
		"id", branch.ID,
		"branched_from", original.ID,
		"at_message", req.FromMessageID,
		"user_id", userID,
	)

	return branch, nil
}

// Remove soft-deletes the conversation.
func (s *conversationService) Remove(ctx context.Context, userID, conversationID string) error {
	if err := s.conversations.SoftDelete(ctx, conversationID, userID); err != nil {
		return err
	}

	s.logger.Info("conversation deleted", "id", conversationID, "user_id", userID)
	return nil
}

// Search matches the query against titles and message contents of the user's
// non-deleted conversations, most recent activity first. An empty query is a
// valid no-op search.
func (s *conversationService) Search(ctx context.Context, userID, query string, projectID *string, limit int) ([]models.Conversation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Conversation{}, nil
	}
	if limit <= 0 {
		limit = services.DefaultSearchLimit
	}

	// Message content is only reachable through the aggregate, so the scan
	// loads full aggregates and filters in memory.
	all, err := s.conversations.List(ctx, userID, repositories.ConversationFilter{
		ProjectID:       projectID,
		IncludeMessages: true,
	})
	if err != nil {
		return nil, err
	}

	matched := make([]models.Conversation, 0, len(all))
	for i := range all {
		if MatchesQuery(&all[i], query) {
			matched = append(matched, all[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastMessageAt.After(matched[j].LastMessageAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// resolveProject returns the target project id, verifying ownership of an
// explicit one and lazily creating the default otherwise.
func (s *conversationService) resolveProject(ctx context.Context, userID string, projectID *string) (string, error) {
	if projectID != nil && *projectID != "" {
		project, err := s.projects.Get(ctx, userID, *projectID)
		if err != nil {
			return "", err
		}
		return project.ID, nil
	}

	project, err := s.projects.EnsureDefault(ctx, userID)
	if err != nil {
		return "", err
	}
	return project.ID, nil
}

func (s *conversationService) validateCreateRequest(req *services.CreateConversationRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxConversationTitleLength)),
		validation.Field(&req.InitialMessage, validation.Length(0, config.MaxMessageContentLength)),
	)
}

func (s *conversationService) validateUpdateRequest(req *services.UpdateConversationRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(0, config.MaxConversationTitleLength)),
	)
	if err != nil {
		return err
	}
	if req.Tags != nil && len(*req.Tags) > config.MaxTagsPerConversation {
		return fmt.Errorf("tags: at most %d allowed", config.MaxTagsPerConversation)
	}
	return nil
}

// patchWithRetry runs the read-apply-patch cycle, retrying on version
// conflicts so concurrent writers interleave instead of failing. Each retry
// re-reads the current aggregate and re-applies the mutation on top of it.
func patchWithRetry(
	ctx context.Context,
	repo repositories.ConversationRepository,
	userID, conversationID string,
	apply func(conv *models.Conversation) error,
) (*models.Conversation, error) {
	var lastErr error
	for attempt := 0; attempt < config.PatchRetryAttempts; attempt++ {
		conv, err := repo.GetByID(ctx, conversationID, userID)
		if err != nil {
			return nil, err
		}
		if err := apply(conv); err != nil {
			return nil, err
		}

		err = repo.Patch(ctx, conv)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// copyMessages deep-copies a message slice so the branch and the original
// never share backing storage.
func copyMessages(src []models.Message) []models.Message {
	out := make([]models.Message, len(src))
	copy(out, src)
	for i := range out {
		if len(src[i].Attachments) > 0 {
			out[i].Attachments = append([]models.Attachment(nil), src[i].Attachments...)
		}
		if len(src[i].ToolsUsed) > 0 {
			out[i].ToolsUsed = append([]models.ToolUse(nil), src[i].ToolsUsed...)
		}
	}
	return out
}
