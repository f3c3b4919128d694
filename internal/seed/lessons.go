// Package seed fills a development database with sample lessons: some with
// structured documents and some carrying only legacy text for the migrator.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	models "carelearn/internal/domain/models/content"
	contentRepo "carelearn/internal/domain/repositories/content"
	contentSvc "carelearn/internal/domain/services/content"
)

// LessonSeeder creates sample lessons through the service (structured) and
// the repository (legacy-only rows the service would never produce).
type LessonSeeder struct {
	lessons contentRepo.LessonRepository
	service contentSvc.LessonService
	logger  *slog.Logger
}

func NewLessonSeeder(lessons contentRepo.LessonRepository, service contentSvc.LessonService, logger *slog.Logger) *LessonSeeder {
	return &LessonSeeder{lessons: lessons, service: service, logger: logger}
}

// Report counts what Seed created.
type Report struct {
	Structured int
	Legacy     int
	Failed     int
}

// Seed creates every sample for ownerID. A sample that fails is logged and
// counted; the rest are still created.
func (s *LessonSeeder) Seed(ctx context.Context, ownerID string) (*Report, error) {
	report := &Report{}

	for _, req := range StructuredLessons() {
		req.OwnerID = ownerID
		lesson, err := s.service.CreateLesson(ctx, req)
		if err != nil {
			s.logger.Error("failed to seed lesson", "title", req.Title, "error", err)
			report.Failed++
			continue
		}
		s.logger.Info("seeded lesson", "id", lesson.ID, "kind", lesson.Kind, "title", lesson.Title,
			"sections", lesson.Content.Metadata.SectionCount)
		report.Structured++
	}

	for _, legacy := range LegacyLessons() {
		body := legacy.Body
		lesson := &models.Lesson{
			Kind:       legacy.Kind,
			OwnerID:    ownerID,
			Title:      legacy.Title,
			Category:   legacy.Category,
			LegacyBody: &body,
		}
		if err := s.lessons.Create(ctx, lesson); err != nil {
			s.logger.Error("failed to seed legacy lesson", "title", legacy.Title, "error", err)
			report.Failed++
			continue
		}
		s.logger.Info("seeded legacy lesson", "id", lesson.ID, "title", lesson.Title)
		report.Legacy++
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("seeding interrupted: %w", err)
	}
	return report, nil
}
