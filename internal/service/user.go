package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
)

// identityService implements the IdentityService interface
type identityService struct {
	users  repositories.UserRepository
	logger *slog.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(users repositories.UserRepository, logger *slog.Logger) services.IdentityService {
	return &identityService{
		users:  users,
		logger: logger,
	}
}

// ResolveUser maps an external subject to a stored user. Absence (empty
// subject or unknown user) is (nil, nil), not an error.
func (s *identityService) ResolveUser(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.users.GetByExternalID(ctx, externalID)
}

// RequireUser fails closed: an unresolvable caller is ErrUnauthorized.
func (s *identityService) RequireUser(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.ResolveUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("no user for caller identity: %w", domain.ErrUnauthorized)
	}
	return user, nil
}

// SyncUser upserts the user record from verified identity claims. First
// sign-in creates the row; later sign-ins refresh display fields and
// last_active_at while leaving settings alone.
func (s *identityService) SyncUser(ctx context.Context, claims *models.IdentityClaims) (*models.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, fmt.Errorf("missing identity claims: %w", domain.ErrUnauthorized)
	}

	now := time.Now()
	user := &models.User{
		ExternalID:   claims.Subject,
		Email:        claims.Email,
		DisplayName:  displayNameFromClaims(claims),
		AvatarURL:    claims.Picture,
		Settings:     models.JSONMap{},
		LastActiveAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user synced",
		"id", user.ID,
		"external_id", user.ExternalID,
	)

	return user, nil
}

// UpdateProfile patches profile fields and settings.
func (s *identityService) UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.User, error) {
	if err := s.validateUpdateProfileRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Models != nil {
		if err := user.SetModelSettings(req.Models); err != nil {
			return nil, fmt.Errorf("set model settings: %w", err)
		}
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID)

	return user, nil
}

// DeleteAccount hard-deletes the user; owned projects and conversations
// cascade at the schema level.
func (s *identityService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

func (s *identityService) validateUpdateProfileRequest(req *services.UpdateProfileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DisplayName, validation.NilOrNotEmpty, validation.Length(0, 255)),
		validation.Field(&req.AvatarURL, validation.Length(0, 2048)),
	)
}

// displayNameFromClaims prefers the profile name, falling back to the local
// part of the email address.
func displayNameFromClaims(claims *models.IdentityClaims) string {
	if claims.Name != "" {
		return claims.Name
	}
	if at := strings.Index(claims.Email, "@"); at > 0 {
		return claims.Email[:at]
	}
	return claims.Email
}
