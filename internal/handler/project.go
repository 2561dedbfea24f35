package handler

import (
	"log/slog"
	"net/http"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	identity services.IdentityService
	projects services.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(identity services.IdentityService, projects services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		identity: identity,
		projects: projects,
		logger:   logger,
	}
}

// ListProjects lists the caller's projects
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// CreateProject creates a new project
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.Create(r.Context(), user.ID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject retrieves one project
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// UpdateProject patches a project
// PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.Update(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject soft-deletes a project
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	if _, err := h.projects.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
