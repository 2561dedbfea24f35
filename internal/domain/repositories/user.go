package repositories

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// UserRepository persists user records keyed by the identity provider's
// subject claim.
type UserRepository interface {
	// GetByID looks a user up by primary id; missing users are
	// domain.ErrNotFound.
	GetByID(ctx context.Context, userID string) (*models.User, error)

	// GetByExternalID looks a user up by the external identity key.
	// Returns (nil, nil) when no such user exists - absence is not an error
	// at this layer.
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// Upsert creates the user on first sign-in or refreshes display fields
	// and last_active_at on subsequent sign-ins.
	Upsert(ctx context.Context, user *models.User) error

	// Update persists profile and settings changes.
	Update(ctx context.Context, user *models.User) error

	// Delete hard-deletes the user. Projects and conversations cascade at
	// the schema level; this is only reachable through explicit account
	// deletion.
	Delete(ctx context.Context, userID string) error
}
