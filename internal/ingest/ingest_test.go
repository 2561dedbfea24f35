package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  plain text body \n"))
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<h1>Title</h1><p>Hello <strong>world</strong></p><script>alert(1)</script>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractTextPlain(t *testing.T) {
	srv := testServer(t)
	svc := NewService()

	text, err := svc.ExtractText(context.Background(), models.Attachment{
		Name:      "notes.txt",
		URL:       srv.URL + "/notes.txt",
		MimeType:  "text/plain",
		SizeBytes: 20,
	})
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "plain text body" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextHTMLToMarkdown(t *testing.T) {
	srv := testServer(t)
	svc := NewService()

	text, err := svc.ExtractText(context.Background(), models.Attachment{
		Name:      "page.html",
		URL:       srv.URL + "/page.html",
		MimeType:  "text/html",
		SizeBytes: 100,
	})
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	if !strings.Contains(text, "Hello **world**") {
		t.Errorf("markdown conversion missing emphasis: %q", text)
	}
	if strings.Contains(text, "alert(") {
		t.Errorf("script content survived sanitization: %q", text)
	}
}

func TestExtractTextUnknownTextSubtypeFallsBack(t *testing.T) {
	srv := testServer(t)
	svc := NewService()

	text, err := svc.ExtractText(context.Background(), models.Attachment{
		Name:      "notes.txt",
		URL:       srv.URL + "/notes.txt",
		MimeType:  "text/x-log",
		SizeBytes: 20,
	})
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "plain text body" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextFailureKinds(t *testing.T) {
	srv := testServer(t)
	svc := NewService()

	tests := []struct {
		name     string
		att      models.Attachment
		wantKind string
	}{
		{
			name: "declared size over limit",
			att: models.Attachment{
				Name:      "huge.txt",
				URL:       srv.URL + "/notes.txt",
				MimeType:  "text/plain",
				SizeBytes: config.MaxAttachmentBytes + 1,
			},
			wantKind: FailureTooLarge,
		},
		{
			name: "unsupported type",
			att: models.Attachment{
				Name:      "photo.png",
				URL:       srv.URL + "/notes.txt",
				MimeType:  "image/png",
				SizeBytes: 10,
			},
			wantKind: FailureUnsupported,
		},
		{
			name: "fetch failure",
			att: models.Attachment{
				Name:      "gone.txt",
				URL:       srv.URL + "/missing",
				MimeType:  "text/plain",
				SizeBytes: 10,
			},
			wantKind: FailureFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ExtractText(context.Background(), tt.att)
			var extractErr *ExtractError
			if !errors.As(err, &extractErr) {
				t.Fatalf("error = %v, want *ExtractError", err)
			}
			if extractErr.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", extractErr.Kind, tt.wantKind)
			}
		})
	}
}
