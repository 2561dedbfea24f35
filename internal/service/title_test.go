package service

import (
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		provider string
		model    string
		content  string
		want     string
	}{
		{
			name:     "empty content uses fallback",
			fallback: "New Conversation",
			provider: "anthropic",
			model:    "anthropic/claude-3.5-sonnet",
			content:  "",
			want:     "New Conversation • anthropic/sonnet",
		},
		{
			name:     "whitespace content uses fallback",
			fallback: "New Conversation",
			provider: "anthropic",
			model:    "anthropic/claude-3.5-sonnet",
			content:  "   \n\t ",
			want:     "New Conversation • anthropic/sonnet",
		},
		{
			name:     "short content uses fallback",
			fallback: "New Conversation",
			provider: "anthropic",
			model:    "anthropic/claude-3.5-sonnet",
			content:  "hi",
			want:     "New Conversation • anthropic/sonnet",
		},
		{
			name:     "long content cut at word boundary",
			fallback: "New Conversation",
			provider: "anthropic",
			model:    "anthropic/claude-3.5-sonnet",
			content:  "Plan my trip to Lisbon for 5 days",
			want:     "Plan my trip to Lisbon for 5 • anthropic/sonnet",
		},
		{
			name:     "long message keeps leading words",
			fallback: "New Conversation",
			provider: "anthropic",
			model:    "anthropic/claude-3.5-sonnet",
			content:  "hello there friend this is a long message body",
			want:     "hello there friend this is a • anthropic/sonnet",
		},
		{
			name:     "content within budget passes through",
			fallback: "New Conversation",
			provider: "openrouter",
			model:    "meta-llama/llama-3.1-70b",
			content:  "short question",
			want:     "short question • openrouter/70b",
		},
		{
			name:     "whitespace runs collapsed",
			fallback: "New Conversation",
			provider: "anthropic",
			model:    "anthropic/claude-3.5-sonnet",
			content:  "Plan   my\ttrip\nto Lisbon for 5 days",
			want:     "Plan my trip to Lisbon for 5 • anthropic/sonnet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.fallback, tt.provider, tt.model, tt.content)
			if got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveTitleIdempotent(t *testing.T) {
	first := DeriveTitle("New Conversation", "anthropic", "anthropic/claude-3.5-sonnet", "Plan my trip to Lisbon for 5 days")
	second := DeriveTitle("New Conversation", "anthropic", "anthropic/claude-3.5-sonnet", "Plan my trip to Lisbon for 5 days")
	if first != second {
		t.Errorf("identical inputs produced different titles: %q vs %q", first, second)
	}
}

func TestShortModelName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"anthropic/claude-3.5-sonnet", "sonnet"},
		{"anthropic/claude-3-opus", "opus"},
		{"gpt-4", "4"},
		{"sonnet", "sonnet"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ShortModelName(tt.model); got != tt.want {
			t.Errorf("ShortModelName(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestStripTitleSuffix(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Plan my trip • anthropic/sonnet", "Plan my trip"},
		{"No suffix here", "No suffix here"},
		{"New Conversation • anthropic/sonnet", "New Conversation"},
	}

	for _, tt := range tests {
		if got := StripTitleSuffix(tt.title); got != tt.want {
			t.Errorf("StripTitleSuffix(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
