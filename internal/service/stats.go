package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
)

// statsService implements the StatsService interface
type statsService struct {
	conversations repositories.ConversationRepository
	logger        *slog.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(conversations repositories.ConversationRepository, logger *slog.Logger) services.StatsService {
	return &statsService{
		conversations: conversations,
		logger:        logger,
	}
}

// ComputeUserStats scans every non-deleted conversation the user owns and
// rederives the usage aggregates from scratch. A user with no assistant
// messages gets zero averages, never a division by zero.
func (s *statsService) ComputeUserStats(ctx context.Context, userID string) (*models.UsageStats, error) {
	conversations, err := s.conversations.List(ctx, userID, repositories.ConversationFilter{
		IncludeMessages: true,
	})
	if err != nil {
		return nil, err
	}

	stats := &models.UsageStats{
		TotalConversations: len(conversations),
	}

	for i := range conversations {
		conv := &conversations[i]
		stats.TotalMessages += len(conv.Messages)

		for j := range conv.Messages {
			msg := &conv.Messages[j]
			if msg.TokenCount != nil {
				stats.TotalTokens += *msg.TokenCount
			}
			if msg.Role == models.RoleAssistant {
				stats.AssistantMessages++
				stats.TotalResponseSeconds += msg.ResponseSeconds()
			}
		}
	}

	if stats.AssistantMessages > 0 {
		stats.AvgResponseTime = round2(stats.TotalResponseSeconds / float64(stats.AssistantMessages))
	}
	if stats.TotalResponseSeconds > 0 {
		stats.TokensPerSecond = round2(float64(stats.TotalTokens) / stats.TotalResponseSeconds)
	}

	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
