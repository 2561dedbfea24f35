package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
)

// In-memory repositories backing the service tests. They mirror the postgres
// implementations' contracts: ownership scoping, soft-delete filtering, and
// compare-and-swap on the conversation version.

type fakeConversationRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Conversation
	order []string
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{byID: make(map[string]*models.Conversation)}
}

func cloneConversation(c *models.Conversation) *models.Conversation {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	out.Messages = copyMessages(c.Messages)
	return &out
}

func (r *fakeConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv.ID = uuid.New().String()
	conv.Version = 1
	r.byID[conv.ID] = cloneConversation(conv)
	r.order = append(r.order, conv.ID)
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id, userID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok || stored.UserID != userID || stored.IsDeleted() {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return cloneConversation(stored), nil
}

func (r *fakeConversationRepo) List(ctx context.Context, userID string, filter repositories.ConversationFilter) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Conversation
	for _, id := range r.order {
		stored := r.byID[id]
		if stored.UserID != userID || stored.IsDeleted() {
			continue
		}
		if filter.ProjectID != nil && stored.ProjectID != *filter.ProjectID {
			continue
		}
		c := cloneConversation(stored)
		if !filter.IncludeMessages {
			c.Messages = nil
		}
		out = append(out, *c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	if out == nil {
		out = []models.Conversation{}
	}
	return out, nil
}

func (r *fakeConversationRepo) Patch(ctx context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[conv.ID]
	if !ok || stored.UserID != conv.UserID || stored.IsDeleted() {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
	}
	if stored.Version != conv.Version {
		return &domain.ConflictError{
			Message:      "conversation was modified concurrently",
			ResourceType: "conversation",
			ResourceID:   conv.ID,
		}
	}

	conv.Version++
	r.byID[conv.ID] = cloneConversation(conv)
	return nil
}

func (r *fakeConversationRepo) SoftDelete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok || stored.UserID != userID || stored.IsDeleted() {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

func (r *fakeConversationRepo) SoftDeleteByProject(ctx context.Context, projectID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var hidden int64
	now := time.Now()
	for _, stored := range r.byID {
		if stored.UserID == userID && stored.ProjectID == projectID && !stored.IsDeleted() {
			deletedAt := now
			stored.DeletedAt = &deletedAt
			stored.Version++
			hidden++
		}
	}
	return hidden, nil
}

// fakeTxManager runs the function directly; the in-memory repositories have
// no transaction semantics to coordinate.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeProjectRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{byID: make(map[string]*models.Project)}
}

func cloneProject(p *models.Project) *models.Project {
	out := *p
	return &out
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if project.IsDefault {
		for _, existing := range r.byID {
			if existing.UserID == project.UserID && existing.IsDefault && existing.DeletedAt == nil {
				return &domain.ConflictError{
					Message:      "default project already exists",
					ResourceType: "project",
					ResourceID:   existing.ID,
				}
			}
		}
	}

	project.ID = uuid.New().String()
	r.byID[project.ID] = cloneProject(project)
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok || stored.UserID != userID || stored.DeletedAt != nil {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return cloneProject(stored), nil
}

func (r *fakeProjectRepo) GetDefault(ctx context.Context, userID string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.byID {
		if stored.UserID == userID && stored.IsDefault && stored.DeletedAt == nil {
			return cloneProject(stored), nil
		}
	}
	return nil, fmt.Errorf("default project for user %s: %w", userID, domain.ErrNotFound)
}

func (r *fakeProjectRepo) List(ctx context.Context, userID string) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Project{}
	for _, stored := range r.byID {
		if stored.UserID == userID && stored.DeletedAt == nil {
			out = append(out, *cloneProject(stored))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[project.ID]
	if !ok || stored.UserID != project.UserID || stored.DeletedAt != nil {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}
	r.byID[project.ID] = cloneProject(project)
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id, userID string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok || stored.UserID != userID || stored.DeletedAt != nil {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	now := time.Now()
	stored.DeletedAt = &now
	return cloneProject(stored), nil
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*models.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	out := *stored
	return &out, nil
}

func (r *fakeUserRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.byID {
		if stored.ExternalID == externalID {
			out := *stored
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, stored := range r.byID {
		if stored.ExternalID == user.ExternalID {
			user.ID = id
			user.Settings = stored.Settings
			user.CreatedAt = stored.CreatedAt
			out := *user
			r.byID[id] = &out
			return nil
		}
	}

	user.ID = uuid.New().String()
	out := *user
	r.byID[user.ID] = &out
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	out := *user
	r.byID[user.ID] = &out
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	delete(r.byID, userID)
	return nil
}
