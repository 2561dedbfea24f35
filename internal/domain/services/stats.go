package services

import (
	"context"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// StatsService recomputes usage statistics on demand by scanning all of the
// user's non-deleted conversations. No incremental counters; the full re-scan
// is the accepted cost at per-user data volumes.
type StatsService interface {
	ComputeUserStats(ctx context.Context, userID string) (*models.UsageStats, error)
}
