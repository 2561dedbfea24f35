package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is the aggregate: one row holding the conversation metadata,
// the embedded ordered message list, and the derived statistics. The message
// list is persisted as a single JSONB value so every mutation is one atomic
// row patch; Version is compared-and-swapped on each patch so concurrent
// writers cannot silently drop each other's messages.
type Conversation struct {
	ID          string   `json:"id" db:"id"`
	UserID      string   `json:"user_id" db:"user_id"`
	ProjectID   string   `json:"project_id" db:"project_id"`
	Title       string   `json:"title" db:"title"`
	Description string   `json:"description" db:"description"`
	Provider    string   `json:"provider" db:"provider"`
	Model       string   `json:"model" db:"model"`
	Tags        []string `json:"tags" db:"tags"`

	// TitleGenerated marks the title as derived rather than user-set.
	// Auto-rename only ever touches generated titles; an explicit title
	// update clears the flag permanently.
	TitleGenerated bool `json:"title_generated" db:"title_generated"`

	IsPinned   bool `json:"is_pinned" db:"is_pinned"`
	IsArchived bool `json:"is_archived" db:"is_archived"`
	IsFavorite bool `json:"is_favorite" db:"is_favorite"`

	// Branch lineage, set when the conversation was seeded from a prefix
	// of another conversation's history.
	BranchedFrom        *string `json:"branched_from,omitempty" db:"branched_from"`
	BranchFromMessageID *string `json:"branch_from_message_id,omitempty" db:"branch_from_message_id"`

	Messages []Message `json:"messages" db:"messages"`

	// Derived aggregate fields. MessageCount always equals len(Messages);
	// LastMessageAt always equals the last message's timestamp, or the
	// creation/truncation time while the list is empty.
	MessageCount      int        `json:"message_count" db:"message_count"`
	TotalTokens       int        `json:"total_tokens" db:"total_tokens"`
	AvgInferenceSpeed *float64   `json:"avg_inference_speed,omitempty" db:"avg_inference_speed"`
	LastMessageAt     time.Time  `json:"last_message_at" db:"last_message_at"`

	Version   int        `json:"-" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the conversation has been soft-deleted.
func (c *Conversation) IsDeleted() bool {
	return c.DeletedAt != nil
}

// FindMessage returns the index of the message with the given id, or -1.
func (c *Conversation) FindMessage(messageID string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// RecomputeStats rederives the aggregate fields from the embedded list.
// now is used for LastMessageAt when the list is empty (creation and
// truncate-to-empty both land here).
func (c *Conversation) RecomputeStats(now time.Time) {
	c.MessageCount = len(c.Messages)

	if len(c.Messages) == 0 {
		c.LastMessageAt = now
	} else {
		c.LastMessageAt = c.Messages[len(c.Messages)-1].Timestamp
	}

	totalTokens := 0
	hasTokens := false
	speedSum := 0.0
	speedCount := 0
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.TokenCount != nil {
			totalTokens += *m.TokenCount
			hasTokens = true
		}
		if m.InferenceSpeed != nil {
			speedSum += *m.InferenceSpeed
			speedCount++
		}
	}

	// Token/speed aggregates are only meaningful when at least one message
	// reports them; otherwise leave the previous values untouched.
	if hasTokens {
		c.TotalTokens = totalTokens
	}
	if speedCount > 0 {
		avg := speedSum / float64(speedCount)
		c.AvgInferenceSpeed = &avg
	}
}

// Message is one entry in a conversation's embedded list. The id is opaque
// and unique within its conversation; order is insertion order and is never
// reordered, only appended to or truncated from a point forward.
type Message struct {
	ID             string       `json:"id"`
	Role           string       `json:"role"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	Provider       string       `json:"provider,omitempty"`
	Model          string       `json:"model,omitempty"`
	TokenCount     *int         `json:"token_count,omitempty"`
	InferenceSpeed *float64     `json:"inference_speed,omitempty"`
	ResponseStart  *time.Time   `json:"response_start_time,omitempty"`
	ResponseEnd    *time.Time   `json:"response_end_time,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	ToolsUsed      []ToolUse    `json:"tools_used,omitempty"`
}

// ResponseSeconds returns the elapsed response time in seconds, or 0 when
// either stamp is missing.
func (m *Message) ResponseSeconds() float64 {
	if m.ResponseStart == nil || m.ResponseEnd == nil {
		return 0
	}
	return m.ResponseEnd.Sub(*m.ResponseStart).Seconds()
}

// Attachment references an uploaded file attached to a message. Extracted
// holds whatever the ingestion collaborator produced: extracted text on
// success, or the typed failure rendered as text. The message treats either
// outcome as an opaque content string.
type Attachment struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Extracted string `json:"extracted,omitempty"`
}

// Tool-use record types. The set is closed: each known tool has its own
// variant, and anything else must arrive as an explicit opaque payload.
const (
	ToolTypeWebSearch = "web_search"
	ToolTypeFileRead  = "file_read"
	ToolTypeOpaque    = "opaque"
)

// WebSearchTool records a web search performed while generating a message.
type WebSearchTool struct {
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
}

// FileReadTool records an attachment read performed while generating a message.
type FileReadTool struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// ToolUse is a tagged variant: exactly the field matching Type is set.
// Unknown tool payloads are carried verbatim under the opaque variant rather
// than as loose maps.
type ToolUse struct {
	Type      string          `json:"type"`
	WebSearch *WebSearchTool  `json:"web_search,omitempty"`
	FileRead  *FileReadTool   `json:"file_read,omitempty"`
	Opaque    json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the variant is closed and internally consistent. Called at
// the boundary before a tool-use record is accepted into a message.
func (t *ToolUse) Validate() error {
	switch t.Type {
	case ToolTypeWebSearch:
		if t.WebSearch == nil {
			return fmt.Errorf("tool_use %q: missing web_search payload", t.Type)
		}
		if t.WebSearch.Query == "" {
			return fmt.Errorf("tool_use %q: query is required", t.Type)
		}
	case ToolTypeFileRead:
		if t.FileRead == nil {
			return fmt.Errorf("tool_use %q: missing file_read payload", t.Type)
		}
		if t.FileRead.Name == "" {
			return fmt.Errorf("tool_use %q: name is required", t.Type)
		}
	case ToolTypeOpaque:
		if len(t.Opaque) == 0 {
			return fmt.Errorf("tool_use %q: missing payload", t.Type)
		}
		if !json.Valid(t.Opaque) {
			return fmt.Errorf("tool_use %q: payload is not valid JSON", t.Type)
		}
	case "":
		return fmt.Errorf("tool_use: type is required")
	default:
		return fmt.Errorf("tool_use: unknown type %q", t.Type)
	}
	return nil
}
