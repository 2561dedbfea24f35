package config

const (
	// MaxProjectNameLength is the maximum length for project names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxProjectNameLength = 255

	// MaxConversationTitleLength is the maximum length for conversation
	// titles. Derived titles are far shorter; the cap guards user-set ones.
	MaxConversationTitleLength = 255

	// MaxMessageContentLength caps a single message body. Large pastes are
	// expected; multi-megabyte bodies are not.
	MaxMessageContentLength = 200_000

	// MaxTagsPerConversation caps the tag list on a conversation.
	MaxTagsPerConversation = 20

	// MaxAttachmentBytes is the largest attachment the ingestion
	// collaborator will extract text from.
	MaxAttachmentBytes = 10 << 20

	// PatchRetryAttempts is how many times a service retries a
	// version-checked conversation patch before surfacing the conflict.
	PatchRetryAttempts = 3
)
