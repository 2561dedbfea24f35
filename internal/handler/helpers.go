package handler

import (
	"errors"
	"net/http"

	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// handleError converts domain errors to HTTP problem responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvariant):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUser resolves the caller to a stored user, writing the 401 problem
// response itself when that fails. The second return is false when a response
// was already written.
func requireUser(w http.ResponseWriter, r *http.Request, identity services.IdentityService) (*models.User, bool) {
	user, err := identity.RequireUser(r.Context(), httputil.GetSubject(r))
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return user, true
}

// optionalString reads a query parameter as *string, nil when absent.
func optionalString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}
