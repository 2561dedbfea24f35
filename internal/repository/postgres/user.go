package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface using PostgreSQL
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new PostgresUserRepository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID looks a user up by primary id.
func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, external_id, email, display_name, avatar_url, settings,
		       last_active_at, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	var user models.User
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Settings,
		&user.LastActiveAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByExternalID looks a user up by the identity provider's subject.
// Returns (nil, nil) when no such user exists.
func (r *PostgresUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, external_id, email, display_name, avatar_url, settings,
		       last_active_at, created_at, updated_at
		FROM %s
		WHERE external_id = $1
	`, r.tables.Users)

	var user models.User
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Settings,
		&user.LastActiveAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			// Unknown subject - absent, not an error
			return nil, nil
		}
		return nil, fmt.Errorf("get user by external id: %w", err)
	}

	return &user, nil
}

// Upsert creates the user on first sign-in or refreshes display fields and
// last_active_at on subsequent sign-ins.
func (r *PostgresUserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (external_id, email, display_name, avatar_url, settings,
		                last_active_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			last_active_at = EXCLUDED.last_active_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, settings, created_at, updated_at
	`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.ExternalID,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
		user.Settings,
		user.LastActiveAt,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.Settings, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// Update persists profile and settings changes.
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET display_name = $1, avatar_url = $2, settings = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		user.DisplayName,
		user.AvatarURL,
		user.Settings,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete hard-deletes the user. Projects and conversations cascade via
// foreign keys; reachable only through explicit account deletion.
func (r *PostgresUserRepository) Delete(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}
