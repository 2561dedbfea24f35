package service

import (
	"strings"

	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// MatchesQuery reports whether the conversation matches a search query:
// case-insensitive substring match against the title or any message content.
// The query is expected to be already trimmed and non-empty.
func MatchesQuery(conv *models.Conversation, query string) bool {
	needle := strings.ToLower(query)

	if strings.Contains(strings.ToLower(conv.Title), needle) {
		return true
	}
	for i := range conv.Messages {
		if strings.Contains(strings.ToLower(conv.Messages[i].Content), needle) {
			return true
		}
	}
	return false
}
