package service

import (
	"context"
	"errors"
	"testing"

	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
)

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.projects.Create(context.Background(), "user-1", &services.CreateProjectRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestEnsureDefaultIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.projects.EnsureDefault(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if !first.IsDefault || first.Name != models.DefaultProjectName {
		t.Errorf("default project = %+v", first)
	}

	second, err := env.projects.EnsureDefault(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("EnsureDefault created a second default: %s vs %s", first.ID, second.ID)
	}
}

// raceProjectRepo simulates a concurrent first-time default creation: the
// first GetDefault misses even though another request inserts the winner
// before our Create lands.
type raceProjectRepo struct {
	*fakeProjectRepo
	missed bool
}

func (r *raceProjectRepo) GetDefault(ctx context.Context, userID string) (*models.Project, error) {
	if !r.missed {
		r.missed = true
		return nil, domain.ErrNotFound
	}
	return r.fakeProjectRepo.GetDefault(ctx, userID)
}

func TestEnsureDefaultLostRaceReReadsWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	winner, err := env.projects.EnsureDefault(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}

	var repo repositories.ProjectRepository = &raceProjectRepo{fakeProjectRepo: env.projectRepo}
	racing := NewProjectService(repo, env.convRepo, fakeTxManager{}, testLogger())

	got, err := racing.EnsureDefault(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureDefault() after lost race error = %v", err)
	}
	if got.ID != winner.ID {
		t.Errorf("loser should re-read the winner: %s vs %s", got.ID, winner.ID)
	}
}

func TestArchiveDefaultProjectFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	def, err := env.projects.EnsureDefault(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}

	_, err = env.projects.Update(ctx, "user-1", def.ID, &services.UpdateProjectRequest{
		IsArchived: boolptr(true),
	})
	if !errors.Is(err, domain.ErrInvariant) {
		t.Errorf("error = %v, want invariant violation", err)
	}
}

func TestDeleteDefaultProjectFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	def, err := env.projects.EnsureDefault(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}

	_, err = env.projects.Delete(ctx, "user-1", def.ID)
	if !errors.Is(err, domain.ErrInvariant) {
		t.Errorf("error = %v, want invariant violation", err)
	}

	// Still there
	if _, err := env.projects.Get(ctx, "user-1", def.ID); err != nil {
		t.Errorf("default project should survive the failed delete: %v", err)
	}
}

func TestDeleteProjectSoft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project, err := env.projects.Create(ctx, "user-1", &services.CreateProjectRequest{Name: "Scratch"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := env.projects.Delete(ctx, "user-1", project.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.DeletedAt == nil {
		t.Error("deleted record should carry its deletion time")
	}

	list, err := env.projects.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("deleted project still listed: %d", len(list))
	}
}

func TestDeleteProjectHidesConversations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project, err := env.projects.Create(ctx, "user-1", &services.CreateProjectRequest{Name: "Travel"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{
		ProjectID: &project.ID,
		Title:     "Lisbon",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := env.projects.Delete(ctx, "user-1", project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.conversations.Get(ctx, "user-1", conv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("conversation in deleted project should be hidden, got %v", err)
	}
}

func TestUpdateProjectRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project, err := env.projects.Create(ctx, "user-1", &services.CreateProjectRequest{Name: "Drafts"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := env.projects.Update(ctx, "user-1", project.ID, &services.UpdateProjectRequest{
		Name:        strptr("Published"),
		Description: strptr("finished pieces"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Published" || updated.Description != "finished pieces" {
		t.Errorf("updated project = %+v", updated)
	}
}
