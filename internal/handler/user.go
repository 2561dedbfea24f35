package handler

import (
	"log/slog"
	"net/http"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// UserHandler handles user identity and profile HTTP requests
type UserHandler struct {
	identity services.IdentityService
	stats    services.StatsService
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(identity services.IdentityService, stats services.StatsService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		identity: identity,
		stats:    stats,
		logger:   logger,
	}
}

// SyncUser upserts the user record from the verified token claims
// POST /api/users/sync
func (h *UserHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.SyncUser(r.Context(), httputil.GetClaims(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// GetMe returns the caller's profile and settings
// GET /api/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// UpdateMe patches the caller's profile and settings
// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.identity.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, updated)
}

// DeleteMe deletes the caller's account and all owned data
// DELETE /api/users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	if err := h.identity.DeleteAccount(r.Context(), user.ID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns the caller's usage statistics
// GET /api/users/me/stats
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.identity)
	if !ok {
		return
	}

	stats, err := h.stats.ComputeUserStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
