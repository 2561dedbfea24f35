package ingest

import (
	"context"
	"strings"
)

// textExtractor passes text content through as-is.
type textExtractor struct{}

func newTextExtractor() Extractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	text := strings.ToValidUTF8(string(content), "�")
	return strings.TrimSpace(text), nil
}

func (e *textExtractor) SupportedTypes() []string {
	return []string{"text/plain", "text/markdown", "text/csv", "application/json"}
}

func (e *textExtractor) Name() string {
	return "text"
}
