package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/repositories"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/ingest"
)

// messageService implements the MessageService interface
type messageService struct {
	conversations repositories.ConversationRepository
	ingest        *ingest.Service
	logger        *slog.Logger
}

// NewMessageService creates a new message service
func NewMessageService(conversations repositories.ConversationRepository, ingestService *ingest.Service, logger *slog.Logger) services.MessageService {
	return &messageService{
		conversations: conversations,
		ingest:        ingestService,
		logger:        logger,
	}
}

// AddMessage appends a message to the conversation's embedded list and
// persists the whole aggregate in one version-checked patch. Attachments are
// extracted before the patch cycle so a version retry never refetches them.
func (s *messageService) AddMessage(ctx context.Context, userID, conversationID string, req *services.AddMessageRequest) (*models.Conversation, error) {
	if err := s.validateAddMessageRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	attachments := s.extractAttachments(ctx, req.Attachments)

	now := time.Now()
	msg := models.Message{
		ID:             uuid.New().String(),
		Role:           req.Role,
		Content:        req.Content,
		Timestamp:      now,
		TokenCount:     req.TokenCount,
		InferenceSpeed: req.InferenceSpeed,
		Attachments:    attachments,
		ToolsUsed:      req.ToolsUsed,
	}
	if req.Provider != nil {
		msg.Provider = *req.Provider
	}
	if req.Model != nil {
		msg.Model = *req.Model
	}

	conv, err := patchWithRetry(ctx, s.conversations, userID, conversationID, func(conv *models.Conversation) error {
		if msg.Provider == "" {
			msg.Provider = conv.Provider
		}
		if msg.Model == "" {
			msg.Model = conv.Model
		}
		if msg.Role == models.RoleAssistant {
			// Both stamps carry the append time. Response time should be
			// measured from generation start instead; the write path has no
			// access to it yet.
			start := msg.Timestamp
			end := msg.Timestamp
			msg.ResponseStart = &start
			msg.ResponseEnd = &end
		}

		wasEmpty := len(conv.Messages) == 0
		conv.Messages = append(conv.Messages, msg)

		// First user message into a still-generated title: rename from its
		// content. User-set titles are never touched.
		if wasEmpty && msg.Role == models.RoleUser && conv.TitleGenerated {
			conv.Title = DeriveTitle(StripTitleSuffix(conv.Title), msg.Provider, msg.Model, msg.Content)
		}

		conv.RecomputeStats(msg.Timestamp)
		conv.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("message appended",
		"conversation_id", conversationID,
		"message_id", msg.ID,
		"role", msg.Role,
		"user_id", userID,
	)

	return conv, nil
}

// UpdateMessage replaces one message's content in place. Every other message
// field and the aggregate token/speed stats stay as they were.
func (s *messageService) UpdateMessage(ctx context.Context, userID, conversationID, messageID, content string) (*models.Conversation, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if len(content) > config.MaxMessageContentLength {
		return nil, fmt.Errorf("%w: content exceeds %d bytes", domain.ErrValidation, config.MaxMessageContentLength)
	}

	conv, err := patchWithRetry(ctx, s.conversations, userID, conversationID, func(conv *models.Conversation) error {
		idx := conv.FindMessage(messageID)
		if idx < 0 {
			return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
		}
		conv.Messages[idx].Content = content
		conv.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("message updated",
		"conversation_id", conversationID,
		"message_id", messageID,
		"user_id", userID,
	)

	return conv, nil
}

// DeleteMessagesFrom truncates the embedded list to everything up to and
// including fromMessageID, so the history can be regenerated from that point.
// An absent id fails before anything is written.
func (s *messageService) DeleteMessagesFrom(ctx context.Context, userID, conversationID, fromMessageID string) (*models.Conversation, error) {
	now := time.Now()
	conv, err := patchWithRetry(ctx, s.conversations, userID, conversationID, func(conv *models.Conversation) error {
		idx := conv.FindMessage(fromMessageID)
		if idx < 0 {
			return fmt.Errorf("message %s: %w", fromMessageID, domain.ErrNotFound)
		}

		conv.Messages = conv.Messages[:idx+1]

		// Only the count and recency move; token/speed aggregates keep their
		// pre-truncation values.
		conv.MessageCount = len(conv.Messages)
		if len(conv.Messages) == 0 {
			conv.LastMessageAt = now
		} else {
			conv.LastMessageAt = conv.Messages[len(conv.Messages)-1].Timestamp
		}
		conv.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("messages truncated",
		"conversation_id", conversationID,
		"from_message_id", fromMessageID,
		"remaining", conv.MessageCount,
		"user_id", userID,
	)

	return conv, nil
}

// extractAttachments runs each attachment through the ingestion collaborator.
// Failures are stored as text on the attachment; the message treats either
// outcome as opaque content.
func (s *messageService) extractAttachments(ctx context.Context, attachments []models.Attachment) []models.Attachment {
	if len(attachments) == 0 {
		return nil
	}

	out := make([]models.Attachment, len(attachments))
	copy(out, attachments)
	for i := range out {
		if out[i].Extracted != "" {
			continue
		}

		text, err := s.ingest.ExtractText(ctx, out[i])
		if err != nil {
			var extractErr *ingest.ExtractError
			if errors.As(err, &extractErr) {
				out[i].Extracted = fmt.Sprintf("[extraction failed: %s] %s", extractErr.Kind, extractErr.Detail)
			} else {
				out[i].Extracted = "[extraction failed] " + err.Error()
			}
			s.logger.Warn("attachment extraction failed",
				"name", out[i].Name,
				"mime_type", out[i].MimeType,
				"error", err,
			)
			continue
		}
		out[i].Extracted = text
	}
	return out
}

func (s *messageService) validateAddMessageRequest(req *services.AddMessageRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Role,
			validation.Required,
			validation.In(models.RoleUser, models.RoleAssistant, models.RoleSystem),
		),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxMessageContentLength),
		),
	)
	if err != nil {
		return err
	}

	for i := range req.ToolsUsed {
		if err := req.ToolsUsed[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
