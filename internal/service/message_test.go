package service

import (
	"context"
	"errors"
	"testing"

	"github.com/krismatterz/ten-chat-sub000/internal/domain"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
)

func TestAddMessageRecomputesAggregates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{
		InitialMessage: strptr("first question"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	speed := 48.5
	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:           models.RoleAssistant,
		Content:        "the answer",
		TokenCount:     intptr(120),
		InferenceSpeed: &speed,
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	if conv.MessageCount != 2 {
		t.Errorf("message count = %d, want 2", conv.MessageCount)
	}
	if conv.TotalTokens != 120 {
		t.Errorf("total tokens = %d, want 120", conv.TotalTokens)
	}
	if conv.AvgInferenceSpeed == nil || *conv.AvgInferenceSpeed != 48.5 {
		t.Errorf("avg inference speed = %v, want 48.5", conv.AvgInferenceSpeed)
	}

	last := conv.Messages[len(conv.Messages)-1]
	if !conv.LastMessageAt.Equal(last.Timestamp) {
		t.Error("lastMessageAt should equal the appended message's timestamp")
	}
	if last.Provider != "anthropic" || last.Model != "anthropic/claude-3.5-sonnet" {
		t.Errorf("provider/model defaults not applied: %s/%s", last.Provider, last.Model)
	}
	if last.ResponseStart == nil || last.ResponseEnd == nil {
		t.Fatal("assistant message should carry response stamps")
	}
	if !last.ResponseStart.Equal(*last.ResponseEnd) || !last.ResponseStart.Equal(last.Timestamp) {
		t.Error("response stamps should both equal the append time")
	}
}

func TestAddMessageUserHasNoResponseStamps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:    models.RoleUser,
		Content: "hello there friend this is a long message body",
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	msg := conv.Messages[0]
	if msg.ResponseStart != nil || msg.ResponseEnd != nil {
		t.Error("user message must not carry response stamps")
	}
}

func TestAddMessageAutoRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if conv.Title != "New Conversation • anthropic/sonnet" {
		t.Fatalf("initial title = %q", conv.Title)
	}

	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:    models.RoleUser,
		Content: "hello there friend this is a long message body",
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	if conv.Title != "hello there friend this is a • anthropic/sonnet" {
		t.Errorf("auto-renamed title = %q", conv.Title)
	}
	if !conv.TitleGenerated {
		t.Error("auto-rename must keep the generated flag")
	}
}

func TestAddMessageNeverRenamesUserTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{
		Title: "My Notes",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:    models.RoleUser,
		Content: "hello there friend this is a long message body",
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	if conv.Title != "My Notes" {
		t.Errorf("user-set title was overwritten: %q", conv.Title)
	}
}

func TestAddMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		req  services.AddMessageRequest
	}{
		{
			name: "unknown role",
			req:  services.AddMessageRequest{Role: "narrator", Content: "hi"},
		},
		{
			name: "missing content",
			req:  services.AddMessageRequest{Role: models.RoleUser},
		},
		{
			name: "unknown tool type",
			req: services.AddMessageRequest{
				Role:    models.RoleAssistant,
				Content: "ok",
				ToolsUsed: []models.ToolUse{
					{Type: "mystery_tool"},
				},
			},
		},
		{
			name: "web search without query",
			req: services.AddMessageRequest{
				Role:    models.RoleAssistant,
				Content: "ok",
				ToolsUsed: []models.ToolUse{
					{Type: models.ToolTypeWebSearch, WebSearch: &models.WebSearchTool{}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.messages.AddMessage(ctx, "user-1", conv.ID, &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestUpdateMessageReplacesContentOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{
		InitialMessage: strptr("original content"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:       models.RoleAssistant,
		Content:    "answer",
		TokenCount: intptr(200),
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	target := conv.Messages[0]
	updated, err := env.messages.UpdateMessage(ctx, "user-1", conv.ID, target.ID, "edited content")
	if err != nil {
		t.Fatalf("UpdateMessage() error = %v", err)
	}

	got := updated.Messages[0]
	if got.Content != "edited content" {
		t.Errorf("content = %q", got.Content)
	}
	if !got.Timestamp.Equal(target.Timestamp) || got.Role != target.Role {
		t.Error("edit must preserve every non-content field")
	}
	if updated.TotalTokens != conv.TotalTokens {
		t.Errorf("edit changed token stats: %d -> %d", conv.TotalTokens, updated.TotalTokens)
	}
	if updated.MessageCount != conv.MessageCount {
		t.Errorf("edit changed message count: %d -> %d", conv.MessageCount, updated.MessageCount)
	}
}

func TestUpdateMessageNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = env.messages.UpdateMessage(ctx, "user-1", conv.ID, "missing", "new content")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestDeleteMessagesFrom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{
		InitialMessage: strptr("first question"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:       models.RoleAssistant,
		Content:    "bad answer",
		TokenCount: intptr(300),
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	conv, err = env.messages.AddMessage(ctx, "user-1", conv.ID, &services.AddMessageRequest{
		Role:    models.RoleUser,
		Content: "followup",
	})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	first := conv.Messages[0]
	tokensBefore := conv.TotalTokens

	truncated, err := env.messages.DeleteMessagesFrom(ctx, "user-1", conv.ID, first.ID)
	if err != nil {
		t.Fatalf("DeleteMessagesFrom() error = %v", err)
	}

	if len(truncated.Messages) != 1 || truncated.Messages[0].ID != first.ID {
		t.Fatalf("truncate at first message should leave exactly that message, got %d", len(truncated.Messages))
	}
	if truncated.MessageCount != 1 {
		t.Errorf("message count = %d, want 1", truncated.MessageCount)
	}
	if !truncated.LastMessageAt.Equal(first.Timestamp) {
		t.Error("lastMessageAt should track the new tail")
	}
	if truncated.TotalTokens != tokensBefore {
		t.Errorf("truncate must not recompute token stats: %d -> %d", tokensBefore, truncated.TotalTokens)
	}
}

func TestDeleteMessagesFromUnknownIDLeavesStoreUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.conversations.Create(ctx, "user-1", &services.CreateConversationRequest{
		InitialMessage: strptr("first question"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = env.messages.DeleteMessagesFrom(ctx, "user-1", conv.ID, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}

	stored, err := env.conversations.Get(ctx, "user-1", conv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(stored.Messages) != 1 || stored.MessageCount != 1 {
		t.Errorf("failed truncate mutated the stored aggregate: %d messages", len(stored.Messages))
	}
	if stored.Version != conv.Version {
		t.Errorf("failed truncate advanced the version: %d -> %d", conv.Version, stored.Version)
	}
}
