package content

import (
	"context"

	models "carelearn/internal/domain/models/content"
)

// LessonService handles lesson/session content. Every write recomputes
// document metadata server-side before it is persisted.
type LessonService interface {
	CreateLesson(ctx context.Context, req *CreateLessonRequest) (*models.Lesson, error)
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	ListLessons(ctx context.Context, kind models.Kind) ([]models.Lesson, error)

	// UpdateContent replaces the whole document. Concurrent editors resolve
	// last-write-wins.
	UpdateContent(ctx context.Context, id string, req *UpdateContentRequest) (*models.Lesson, error)

	// GenerateContent replaces the document with one produced by the generator.
	GenerateContent(ctx context.Context, id string, req *GenerateContentRequest) (*models.Lesson, error)

	RenderLesson(ctx context.Context, id string) (*RenderedDocument, error)
	DeleteLesson(ctx context.Context, id string) error
}

type CreateLessonRequest struct {
	Kind     models.Kind      `json:"kind"`
	OwnerID  string           `json:"-"` // set by handler from auth context
	Title    string           `json:"title"`
	Category string           `json:"category"`
	Content  *models.Document `json:"content,omitempty"`
}

type UpdateContentRequest struct {
	Content *models.Document `json:"content"`
}

type GenerateContentRequest struct {
	Context string `json:"context,omitempty"`
}
