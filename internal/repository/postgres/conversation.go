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

// PostgresConversationRepository implements the ConversationRepository
// interface using PostgreSQL. The embedded message list lives in a JSONB
// column on the conversation row, so every aggregate write is one atomic row
// patch guarded by the version column.
type PostgresConversationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new PostgresConversationRepository
func NewConversationRepository(config *RepositoryConfig) repositories.ConversationRepository {
	return &PostgresConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const conversationMetaColumns = `id, user_id, project_id, title, description, provider, model, tags,
		       title_generated, is_pinned, is_archived, is_favorite,
		       branched_from, branch_from_message_id,
		       message_count, total_tokens, avg_inference_speed, last_message_at,
		       version, created_at, updated_at, deleted_at`

func (r *PostgresConversationRepository) scanMeta(row interface{ Scan(dest ...any) error }, c *models.Conversation, withMessages bool) error {
	dest := []any{
		&c.ID,
		&c.UserID,
		&c.ProjectID,
		&c.Title,
		&c.Description,
		&c.Provider,
		&c.Model,
		&c.Tags,
		&c.TitleGenerated,
		&c.IsPinned,
		&c.IsArchived,
		&c.IsFavorite,
		&c.BranchedFrom,
		&c.BranchFromMessageID,
		&c.MessageCount,
		&c.TotalTokens,
		&c.AvgInferenceSpeed,
		&c.LastMessageAt,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	}
	if withMessages {
		dest = append(dest, &c.Messages)
	}
	return row.Scan(dest...)
}

// Create inserts a new conversation aggregate with version 1.
func (r *PostgresConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, project_id, title, description, provider, model, tags,
		                title_generated, is_pinned, is_archived, is_favorite,
		                branched_from, branch_from_message_id,
		                messages, message_count, total_tokens, avg_inference_speed,
		                last_message_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1, $19, $20)
		RETURNING id, version, created_at, updated_at
	`, r.tables.Conversations)

	if conv.Tags == nil {
		conv.Tags = []string{}
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		conv.UserID,
		conv.ProjectID,
		conv.Title,
		conv.Description,
		conv.Provider,
		conv.Model,
		conv.Tags,
		conv.TitleGenerated,
		conv.IsPinned,
		conv.IsArchived,
		conv.IsFavorite,
		conv.BranchedFrom,
		conv.BranchFromMessageID,
		conv.Messages,
		conv.MessageCount,
		conv.TotalTokens,
		conv.AvgInferenceSpeed,
		conv.LastMessageAt,
		conv.CreatedAt,
		conv.UpdatedAt,
	).Scan(&conv.ID, &conv.Version, &conv.CreatedAt, &conv.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", conv.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create conversation: %w", err)
	}

	return nil
}

// GetByID retrieves the full aggregate, messages included.
func (r *PostgresConversationRepository) GetByID(ctx context.Context, id, userID string) (*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT %s, messages
		FROM %s
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, conversationMetaColumns, r.tables.Conversations)

	var conv models.Conversation
	executor := GetExecutor(ctx, r.pool)
	err := r.scanMeta(executor.QueryRow(ctx, query, id, userID), &conv, true)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conv, nil
}

// List retrieves the user's non-deleted conversations, newest-updated first.
func (r *PostgresConversationRepository) List(ctx context.Context, userID string, filter repositories.ConversationFilter) ([]models.Conversation, error) {
	columns := conversationMetaColumns
	if filter.IncludeMessages {
		columns += ", messages"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND deleted_at IS NULL
	`, columns, r.tables.Conversations)

	args := []any{userID}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := r.scanMeta(rows, &conv, filter.IncludeMessages); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	// Return empty slice instead of nil
	if convs == nil {
		convs = []models.Conversation{}
	}

	return convs, nil
}

// Patch writes the aggregate back only if the stored version still matches
// conv.Version (compare-and-swap). On success the version is advanced in
// place; a lost race is domain.ErrConflict, a missing row domain.ErrNotFound.
func (r *PostgresConversationRepository) Patch(ctx context.Context, conv *models.Conversation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, tags = $3, title_generated = $4,
		    is_pinned = $5, is_archived = $6, is_favorite = $7,
		    messages = $8, message_count = $9, total_tokens = $10,
		    avg_inference_speed = $11, last_message_at = $12,
		    updated_at = $13, version = version + 1
		WHERE id = $14 AND user_id = $15 AND deleted_at IS NULL AND version = $16
		RETURNING version
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		conv.Title,
		conv.Description,
		conv.Tags,
		conv.TitleGenerated,
		conv.IsPinned,
		conv.IsArchived,
		conv.IsFavorite,
		conv.Messages,
		conv.MessageCount,
		conv.TotalTokens,
		conv.AvgInferenceSpeed,
		conv.LastMessageAt,
		conv.UpdatedAt,
		conv.ID,
		conv.UserID,
		conv.Version,
	).Scan(&conv.Version)

	if err == nil {
		return nil
	}
	if !IsPgNoRowsError(err) {
		return fmt.Errorf("patch conversation: %w", err)
	}

	// Zero rows: either the row is gone or another writer advanced the
	// version first. Distinguish so callers can retry the right way.
	existsQuery := fmt.Sprintf(`
		SELECT version FROM %s
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, r.tables.Conversations)

	var currentVersion int
	if scanErr := executor.QueryRow(ctx, existsQuery, conv.ID, conv.UserID).Scan(&currentVersion); scanErr != nil {
		if IsPgNoRowsError(scanErr) {
			return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("patch conversation: %w", scanErr)
	}

	return &domain.ConflictError{
		Message:      fmt.Sprintf("conversation %s was modified concurrently (version %d, expected %d)", conv.ID, currentVersion, conv.Version),
		ResourceType: "conversation",
		ResourceID:   conv.ID,
	}
}

// SoftDelete marks the conversation deleted without removing the row.
func (r *PostgresConversationRepository) SoftDelete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), version = version + 1
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete conversation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SoftDeleteByProject marks every non-deleted conversation in a project
// deleted. Zero affected rows is fine; an empty project deletes cleanly.
func (r *PostgresConversationRepository) SoftDeleteByProject(ctx context.Context, projectID, userID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), version = version + 1
		WHERE project_id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, userID)
	if err != nil {
		return 0, fmt.Errorf("soft delete conversations by project: %w", err)
	}

	return result.RowsAffected(), nil
}
