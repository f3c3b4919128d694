package content

import (
	"context"

	models "carelearn/internal/domain/models/content"
)

// StorageResolver turns a storage-relative path into a fetchable URL.
// It is the only contract the engine assumes of file storage.
type StorageResolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// EmbedResolver maps a raw video link to a player URL.
// ok is false when no known hosting pattern matches; that is not an error.
type EmbedResolver interface {
	Resolve(rawURL string) (embedURL string, ok bool)
}

// Sanitizer filters HTML down to an explicit set of element names.
type Sanitizer interface {
	Sanitize(html string, allow []string) string
}

// ContentSanitizer cleans section HTML with the default allow-list before it
// is stored.
type ContentSanitizer interface {
	SanitizeDefault(html string) string
}

// Renderer turns a stored document into display-safe HTML.
type Renderer interface {
	RenderDocument(ctx context.Context, doc *models.Document) (*RenderedDocument, error)
}

// RenderedDocument is the display form of a document.
type RenderedDocument struct {
	Sections []RenderedSection `json:"sections"`
	HTML     string            `json:"html"`
}

// RenderedBlock is a sanitized section or subsection plus its galleries.
type RenderedBlock struct {
	Title       string          `json:"title"`
	ContentHTML string          `json:"content_html"`
	Images      []RenderedMedia `json:"images"`
	Videos      []RenderedMedia `json:"videos"`
	Documents   []RenderedMedia `json:"documents"`
	HTML        string          `json:"html"`
}

type RenderedSection struct {
	ID string `json:"id"`
	RenderedBlock
	Subsections []RenderedBlock `json:"subsections"`
}

// RenderedMedia is one gallery entry.
// Exactly one of EmbedURL / LinkURL is set for videos.
type RenderedMedia struct {
	Type      models.MediaType `json:"type"`
	URL       string           `json:"url,omitempty"`
	EmbedURL  string           `json:"embed_url,omitempty"`
	LinkURL   string           `json:"link_url,omitempty"`
	Label     string           `json:"label,omitempty"`
	Suggested bool             `json:"ai_suggested,omitempty"`
}
