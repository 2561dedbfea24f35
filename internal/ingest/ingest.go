// Package ingest is the file-ingestion collaborator: given an attachment's
// URL/type/size triple it returns extracted text or a typed failure. Callers
// treat either outcome as an opaque content string.
package ingest

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

// Failure kinds
const (
	FailureTooLarge    = "too_large"
	FailureUnsupported = "unsupported_type"
	FailureFetch       = "fetch_failed"
	FailureConvert     = "conversion_failed"
)

// ExtractError is the typed failure outcome of an extraction attempt.
type ExtractError struct {
	Kind   string
	Detail string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract failed (%s): %s", e.Kind, e.Detail)
}

// Extractor converts one family of MIME types to plain text.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
	SupportedTypes() []string
	Name() string
}

// Service routes attachments to extractors by MIME type.
// Thread-safe for concurrent access.
type Service struct {
	client *http.Client

	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewService creates a service with the standard extractors pre-registered.
func NewService() *Service {
	s := &Service{
		client: &http.Client{Timeout: 30 * time.Second},
		extractors: make(map[string]Extractor),
	}

	s.Register(newTextExtractor())
	s.Register(newHTMLExtractor())

	return s
}

// Register adds an extractor and associates it with its supported MIME types.
func (s *Service) Register(e Extractor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mt := range e.SupportedTypes() {
		s.extractors[strings.ToLower(mt)] = e
	}
}

// ExtractText fetches the attachment and extracts plain text from it.
// Failures come back as *ExtractError; anything else is an infrastructure
// error the caller should not store.
func (s *Service) ExtractText(ctx context.Context, att models.Attachment) (string, error) {
	if att.SizeBytes > config.MaxAttachmentBytes {
		return "", &ExtractError{
			Kind:   FailureTooLarge,
			Detail: fmt.Sprintf("%s is %d bytes, limit is %d", att.Name, att.SizeBytes, config.MaxAttachmentBytes),
		}
	}

	extractor := s.lookup(att.MimeType)
	if extractor == nil {
		return "", &ExtractError{
			Kind:   FailureUnsupported,
			Detail: fmt.Sprintf("no extractor for %s", att.MimeType),
		}
	}

	content, err := s.fetch(ctx, att.URL)
	if err != nil {
		return "", &ExtractError{Kind: FailureFetch, Detail: err.Error()}
	}

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		return "", &ExtractError{Kind: FailureConvert, Detail: err.Error()}
	}

	return text, nil
}

// lookup resolves an extractor for a MIME type; bare text/* types fall back
// to the plain-text extractor.
func (s *Service) lookup(mimeType string) Extractor {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return nil
	}
	mt = strings.ToLower(mt)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.extractors[mt]; ok {
		return e
	}
	if strings.HasPrefix(mt, "text/") {
		return s.extractors["text/plain"]
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch attachment: status %d", resp.StatusCode)
	}

	// Size was checked against the declared size; cap the read in case the
	// declaration lied.
	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if len(body) > config.MaxAttachmentBytes {
		return nil, fmt.Errorf("attachment exceeds %d bytes", config.MaxAttachmentBytes)
	}

	return body, nil
}
