package content

import (
	"context"

	models "carelearn/internal/domain/models/content"
)

// LessonRepository defines data access operations for lessons and sessions
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error

	// GetByID retrieves a lesson; returns domain.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Lesson, error)

	// List returns lessons of the given kind (all kinds when empty), newest first
	List(ctx context.Context, kind models.Kind) ([]models.Lesson, error)

	// UpdateContent writes the structured document (metadata included)
	UpdateContent(ctx context.Context, id string, doc *models.Document) error

	// SetLegacyBody writes or clears (nil) the legacy text column
	SetLegacyBody(ctx context.Context, id string, body *string) error

	// ClearContent sets the structured column back to NULL
	ClearContent(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error

	// ListLegacyIDs returns ids of lessons that still carry legacy text
	ListLegacyIDs(ctx context.Context) ([]string, error)

	// ListContentIDs returns ids of lessons that have a structured document
	ListContentIDs(ctx context.Context) ([]string, error)
}
