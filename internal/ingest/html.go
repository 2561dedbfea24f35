package ingest

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// htmlExtractor converts HTML attachments to markdown text in two stages:
// sanitize first (scripts, event handlers, javascript: URLs), then convert
// the surviving markup to markdown.
type htmlExtractor struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

func newHTMLExtractor() Extractor {
	return &htmlExtractor{
		policy:    bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

func (e *htmlExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	sanitized := e.policy.Sanitize(string(content))

	markdown, err := e.converter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}

	return markdown, nil
}

func (e *htmlExtractor) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (e *htmlExtractor) Name() string {
	return "html"
}
