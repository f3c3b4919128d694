package content

import models "carelearn/internal/domain/models/content"

// LegacyConverter wraps legacy free text into a structured document.
// Implementations must not fail: unparseable input renders as escaped text.
type LegacyConverter interface {
	Convert(legacy string) *models.Document
}

// TextExtractor flattens a document back to text for rollback/recovery.
// The result is lossy: media and formatting are discarded.
type TextExtractor interface {
	Extract(doc *models.Document) string
}
