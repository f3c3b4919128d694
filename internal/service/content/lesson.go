package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"carelearn/internal/config"
	"carelearn/internal/domain"
	models "carelearn/internal/domain/models/content"
	"carelearn/internal/domain/repositories"
	contentRepo "carelearn/internal/domain/repositories/content"
	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/service/content/metadata"
)

// lessonService implements the LessonService interface
type lessonService struct {
	lessonRepo contentRepo.LessonRepository
	txManager  repositories.TransactionManager
	generator  contentSvc.Generator // nil when generation is disabled
	renderer   contentSvc.Renderer
	sanitizer  contentSvc.ContentSanitizer
	converter  contentSvc.LegacyConverter
	logger     *slog.Logger
}

// NewLessonService creates a new lesson service
func NewLessonService(
	lessonRepo contentRepo.LessonRepository,
	txManager repositories.TransactionManager,
	generator contentSvc.Generator,
	renderer contentSvc.Renderer,
	sanitizer contentSvc.ContentSanitizer,
	converter contentSvc.LegacyConverter,
	logger *slog.Logger,
) contentSvc.LessonService {
	return &lessonService{
		lessonRepo: lessonRepo,
		txManager:  txManager,
		generator:  generator,
		renderer:   renderer,
		sanitizer:  sanitizer,
		converter:  converter,
		logger:     logger,
	}
}

// CreateLesson creates a lesson or session. Without content it starts from
// a single empty section.
func (s *lessonService) CreateLesson(ctx context.Context, req *contentSvc.CreateLessonRequest) (*models.Lesson, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrValidation)
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc := req.Content
	if doc == nil {
		doc = models.NewEmptyDocument()
	}
	doc, err := s.prepareDocument(doc)
	if err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		Kind:     req.Kind,
		OwnerID:  req.OwnerID,
		Title:    req.Title,
		Category: req.Category,
		Content:  doc,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		metadata.Stamp(lesson.Content)
		return s.lessonRepo.Create(txCtx, lesson)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson created",
		"id", lesson.ID,
		"kind", lesson.Kind,
		"owner_id", lesson.OwnerID,
		"sections", lesson.Content.Metadata.SectionCount,
	)

	return lesson, nil
}

// GetLesson retrieves a lesson by ID
func (s *lessonService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	return s.lessonRepo.GetByID(ctx, id)
}

// ListLessons lists lessons of one kind, or all kinds when kind is empty
func (s *lessonService) ListLessons(ctx context.Context, kind models.Kind) ([]models.Lesson, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrValidation, kind)
	}
	return s.lessonRepo.List(ctx, kind)
}

// UpdateContent replaces the document wholesale. Metadata sent by the client
// is discarded and recomputed.
func (s *lessonService) UpdateContent(ctx context.Context, id string, req *contentSvc.UpdateContentRequest) (*models.Lesson, error) {
	if req == nil || req.Content == nil {
		return nil, &domain.ValidationError{
			Message: "content is required",
			Fields:  map[string]string{"content": "cannot be blank"},
		}
	}

	doc, err := s.prepareDocument(req.Content)
	if err != nil {
		return nil, err
	}

	lesson, err := s.persistContent(ctx, id, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson content updated",
		"id", id,
		"sections", doc.Metadata.SectionCount,
		"subsections", doc.Metadata.SubsectionCount,
	)

	return lesson, nil
}

// GenerateContent asks the generator for a new document and stores it in
// place of the current one. On failure the stored document is untouched.
func (s *lessonService) GenerateContent(ctx context.Context, id string, req *contentSvc.GenerateContentRequest) (*models.Lesson, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generation is disabled", domain.ErrGenerationFailed)
	}

	genCtx := ""
	if req != nil {
		genCtx = strings.TrimSpace(req.Context)
	}
	if err := validation.Validate(genCtx, validation.RuneLength(0, config.MaxGenerationContextLength)); err != nil {
		return nil, &domain.ValidationError{
			Message: "context is too long",
			Fields:  map[string]string{"context": err.Error()},
		}
	}

	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.Generate(ctx, &contentSvc.GenerateRequest{
		Title:    lesson.Title,
		Category: lesson.Category,
		Context:  genCtx,
	})
	if err != nil {
		s.logger.Warn("content generation failed", "id", id, "error", err)
		return nil, err
	}

	doc, err := s.prepareDocument(generated)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	updated, err := s.persistContent(ctx, id, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson content generated",
		"id", id,
		"sections", doc.Metadata.SectionCount,
		"videos", doc.Metadata.VideoCount,
	)

	return updated, nil
}

// RenderLesson renders the lesson for display. Rows not migrated yet are
// converted from their legacy text on the fly.
func (s *lessonService) RenderLesson(ctx context.Context, id string) (*contentSvc.RenderedDocument, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := lesson.Content
	switch {
	case doc != nil:
	case lesson.LegacyBody != nil:
		doc = s.converter.Convert(*lesson.LegacyBody)
	default:
		doc = models.NewEmptyDocument()
	}

	return s.renderer.RenderDocument(ctx, doc)
}

// DeleteLesson deletes a lesson and its document
func (s *lessonService) DeleteLesson(ctx context.Context, id string) error {
	if _, err := s.lessonRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.lessonRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("lesson deleted", "id", id)
	return nil
}

// persistContent stamps and writes doc in one transaction.
func (s *lessonService) persistContent(ctx context.Context, id string, doc *models.Document) (*models.Lesson, error) {
	var lesson *models.Lesson

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.lessonRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		metadata.Stamp(doc)
		if err := s.lessonRepo.UpdateContent(txCtx, id, doc); err != nil {
			return err
		}

		current.Content = doc
		lesson = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lesson, nil
}

// prepareDocument copies doc, mints ids for sections that arrive without one,
// sanitizes every block's HTML, validates the result and stamps its metadata.
// Existing ids are kept.
func (s *lessonService) prepareDocument(doc *models.Document) (*models.Document, error) {
	out := doc.Clone()
	for i := range out.Sections {
		section := &out.Sections[i]
		if strings.TrimSpace(section.ID) == "" {
			section.ID = models.NewSectionID()
		}
		section.Content = s.sanitizer.SanitizeDefault(section.Content)
		for j := range section.Subsections {
			section.Subsections[j].Content = s.sanitizer.SanitizeDefault(section.Subsections[j].Content)
		}
	}

	if err := ValidateDocument(out); err != nil {
		return nil, err
	}

	metadata.Stamp(out)
	return out, nil
}

func (s *lessonService) validateCreateRequest(req *contentSvc.CreateLessonRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Kind,
			validation.Required,
			validation.In(models.KindLesson, models.KindSession).Error("must be lesson or session"),
		),
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxLessonTitleLength),
		),
		validation.Field(&req.Category, validation.RuneLength(0, config.MaxCategoryLength)),
	)
}
