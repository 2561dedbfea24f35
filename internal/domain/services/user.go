package services

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// IdentityService maps the caller's external identity to a stored user and
// owns profile/settings management. Every other service takes the resolved
// user's id for its ownership checks.
type IdentityService interface {
	// ResolveUser returns the stored user for an external subject, or
	// (nil, nil) when the subject is empty or unknown. Absence is not an
	// error here.
	ResolveUser(ctx context.Context, externalID string) (*models.User, error)

	// RequireUser is ResolveUser failing closed: absence becomes
	// domain.ErrUnauthorized.
	RequireUser(ctx context.Context, externalID string) (*models.User, error)

	// SyncUser upserts the user from verified identity claims on sign-in,
	// creating the record (and nothing else) on first contact and
	// refreshing display fields and last_active_at afterwards.
	SyncUser(ctx context.Context, claims *models.IdentityClaims) (*models.User, error)

	// UpdateProfile patches profile fields and settings.
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error)

	// DeleteAccount hard-deletes the user and cascades to all owned data.
	DeleteAccount(ctx context.Context, userID string) error
}

// UpdateProfileRequest is the DTO for profile/settings patches. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string               `json:"display_name,omitempty"`
	AvatarURL   *string               `json:"avatar_url,omitempty"`
	Models      *models.ModelSettings `json:"models,omitempty"`
}
