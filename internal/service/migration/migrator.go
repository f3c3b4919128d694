// Package migration moves lessons from the legacy free-text column to the
// structured document, one row at a time.
//
// Each row advances pending → transformed → verified → finalized and the
// state is persisted after every step, so an interrupted run resumes where
// it stopped. Until a row is finalized its legacy text is kept and the row
// can be rolled back.
package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"carelearn/internal/domain"
	models "carelearn/internal/domain/models/content"
	"carelearn/internal/domain/repositories"
	contentRepo "carelearn/internal/domain/repositories/content"
	contentSvc "carelearn/internal/domain/services/content"
	contentService "carelearn/internal/service/content"
	"carelearn/internal/service/content/converter"
	"carelearn/internal/service/content/metadata"
)

// Step names one stage of the migration.
type Step string

const (
	StepTransform Step = "transform"
	StepVerify    Step = "verify"
	StepFinalize  Step = "finalize"
	StepRollback  Step = "rollback"
)

// source is the state a step picks rows from by default.
func (s Step) source() models.MigrationState {
	switch s {
	case StepTransform:
		return models.MigrationPending
	case StepVerify:
		return models.MigrationTransformed
	case StepFinalize:
		return models.MigrationVerified
	case StepRollback:
		return models.MigrationTransformed
	}
	return ""
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s.source() != ""
}

// errSkipped marks a row that was not processed. It is not a failure.
var errSkipped = errors.New("skipped")

// Migrator runs the individual migration steps.
type Migrator struct {
	lessons   contentRepo.LessonRepository
	records   contentRepo.MigrationRepository
	txManager repositories.TransactionManager
	converter contentSvc.LegacyConverter

	// rollbackText rebuilds dropped legacy text. fingerprintText is always the
	// plain extractor so checksums stay comparable whatever rollbackText is.
	rollbackText    contentSvc.TextExtractor
	fingerprintText contentSvc.TextExtractor
	logger          *slog.Logger
}

// NewMigrator creates a migrator. rollbackText is used only when a finalized
// row is rolled back and its legacy text has to be rebuilt.
func NewMigrator(
	lessons contentRepo.LessonRepository,
	records contentRepo.MigrationRepository,
	txManager repositories.TransactionManager,
	legacyConverter contentSvc.LegacyConverter,
	rollbackText contentSvc.TextExtractor,
	logger *slog.Logger,
) *Migrator {
	return &Migrator{
		lessons:         lessons,
		records:         records,
		txManager:       txManager,
		converter:       legacyConverter,
		rollbackText:    rollbackText,
		fingerprintText: converter.NewTextExtractor(logger),
		logger:          logger,
	}
}

// PlanOptions controls Plan.
type PlanOptions struct {
	// Retry moves failed and rolled-back rows back to pending.
	Retry bool
}

// PlanReport lists what Plan changed.
type PlanReport struct {
	Created int `json:"created"`
	Retried int `json:"retried"`
}

// Plan records a pending row for every lesson that still has legacy text
// and no migration record yet.
func (m *Migrator) Plan(ctx context.Context, opts PlanOptions) (*PlanReport, error) {
	ids, err := m.lessons.ListLegacyIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list legacy lessons: %w", err)
	}

	created, err := m.records.EnsurePending(ctx, ids)
	if err != nil {
		return nil, err
	}
	report := &PlanReport{Created: created}

	if opts.Retry {
		for _, state := range []models.MigrationState{models.MigrationFailed, models.MigrationRolledBack} {
			records, err := m.records.ListByState(ctx, state, 0)
			if err != nil {
				return nil, err
			}
			for _, record := range records {
				err := m.records.Transition(ctx, record.LessonID, state, models.MigrationPending, nil)
				if errors.Is(err, domain.ErrInvalidTransition) {
					continue
				}
				if err != nil {
					return nil, err
				}
				report.Retried++
			}
		}
	}

	m.logger.Info("migration planned", "legacy_lessons", len(ids), "created", report.Created, "retried", report.Retried)
	return report, nil
}

// Transform converts one pending row's legacy text into a document and
// records the fingerprint verification will compare against. The legacy
// text is left in place.
func (m *Migrator) Transform(ctx context.Context, lessonID string, dryRun bool) error {
	return m.runStep(ctx, lessonID, models.MigrationPending, dryRun, func(txCtx context.Context, lesson *models.Lesson) error {
		if lesson.LegacyBody == nil {
			return errors.New("lesson has no legacy text")
		}
		if lesson.Content != nil {
			return errors.New("lesson already has structured content")
		}

		doc := m.converter.Convert(*lesson.LegacyBody)
		checksum := m.fingerprint(doc)
		if dryRun {
			return nil
		}

		if err := m.lessons.UpdateContent(txCtx, lesson.ID, doc); err != nil {
			return err
		}
		return m.records.Transition(txCtx, lesson.ID, models.MigrationPending, models.MigrationTransformed,
			&models.MigrationUpdate{Checksum: &checksum, CountAttempt: true, ClearError: true})
	})
}

// Verify checks a transformed row: the document is valid, its metadata is
// consistent and both the stored document and a fresh conversion of the
// legacy text still match the fingerprint taken at transform time.
func (m *Migrator) Verify(ctx context.Context, lessonID string, dryRun bool) error {
	return m.runStep(ctx, lessonID, models.MigrationTransformed, dryRun, func(txCtx context.Context, lesson *models.Lesson) error {
		record, err := m.records.Get(txCtx, lesson.ID)
		if err != nil {
			return err
		}

		if lesson.Content == nil {
			return errors.New("structured content is missing")
		}
		if lesson.LegacyBody == nil {
			return errors.New("legacy text is missing")
		}
		if err := contentService.ValidateDocument(lesson.Content); err != nil {
			return fmt.Errorf("document is invalid: %w", err)
		}
		if d := metadata.Verify(lesson.Content); len(d) > 0 {
			return fmt.Errorf("metadata disagrees with the tree on %d count(s), first %s", len(d), d[0].Field)
		}
		if record.Checksum == nil {
			return errors.New("no checksum was recorded at transform time")
		}
		if got := m.fingerprint(lesson.Content); got != *record.Checksum {
			return errors.New("document changed since transform")
		}
		if got := m.fingerprint(m.converter.Convert(*lesson.LegacyBody)); got != *record.Checksum {
			return errors.New("legacy text changed since transform")
		}

		if dryRun {
			return nil
		}
		return m.records.Transition(txCtx, lesson.ID, models.MigrationTransformed, models.MigrationVerified, nil)
	})
}

// Finalize drops the legacy text of a verified row. After this, rollback
// can only reconstruct the text from the document.
func (m *Migrator) Finalize(ctx context.Context, lessonID string, dryRun bool) error {
	return m.runStep(ctx, lessonID, models.MigrationVerified, dryRun, func(txCtx context.Context, lesson *models.Lesson) error {
		if lesson.Content == nil {
			return errors.New("structured content is missing")
		}
		if dryRun {
			return nil
		}

		if err := m.lessons.SetLegacyBody(txCtx, lesson.ID, nil); err != nil {
			return err
		}
		return m.records.Transition(txCtx, lesson.ID, models.MigrationVerified, models.MigrationFinalized, nil)
	})
}

// Rollback returns a row to its legacy text and clears the document. When
// the legacy text was already dropped it is rebuilt with rollbackText,
// which loses media and formatting.
func (m *Migrator) Rollback(ctx context.Context, lessonID string, dryRun bool) error {
	record, err := m.records.Get(ctx, lessonID)
	if err != nil {
		return err
	}
	if !record.State.CanTransition(models.MigrationRolledBack) {
		return fmt.Errorf("%w: %v", errSkipped,
			&domain.TransitionError{LessonID: lessonID, From: string(record.State), To: string(models.MigrationRolledBack)})
	}
	from := record.State

	return m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		lesson, err := m.lessons.GetByID(txCtx, lessonID)
		if err != nil {
			return err
		}

		if lesson.LegacyBody == nil {
			if lesson.Content == nil {
				return errors.New("lesson has neither legacy text nor structured content")
			}
			m.logger.Warn("rebuilding legacy text from document; media and formatting are lost",
				"lesson_id", lessonID,
				"media", lesson.Content.Metadata.ImageCount+lesson.Content.Metadata.VideoCount+lesson.Content.Metadata.DocumentCount,
			)
			if !dryRun {
				text := m.rollbackText.Extract(lesson.Content)
				if err := m.lessons.SetLegacyBody(txCtx, lessonID, &text); err != nil {
					return err
				}
			}
		}
		if dryRun {
			return nil
		}

		if err := m.lessons.ClearContent(txCtx, lessonID); err != nil {
			return err
		}
		return m.records.Transition(txCtx, lessonID, from, models.MigrationRolledBack, &models.MigrationUpdate{ClearError: true})
	})
}

// runStep loads the lesson and runs fn in one transaction. A row whose
// record is not in state from is skipped. When fn fails the row is marked
// failed with the error.
func (m *Migrator) runStep(ctx context.Context, lessonID string, from models.MigrationState, dryRun bool, fn func(context.Context, *models.Lesson) error) error {
	record, err := m.records.Get(ctx, lessonID)
	if err != nil {
		return err
	}
	if record.State != from {
		return fmt.Errorf("%w: lesson %s is %s, not %s", errSkipped, lessonID, record.State, from)
	}

	err = m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		lesson, err := m.lessons.GetByID(txCtx, lessonID)
		if err != nil {
			return err
		}
		return fn(txCtx, lesson)
	})
	if err == nil {
		return nil
	}

	// Another worker moved the row first
	if errors.Is(err, domain.ErrInvalidTransition) {
		return fmt.Errorf("%w: %v", errSkipped, err)
	}
	if ctx.Err() != nil || dryRun {
		return err
	}

	m.markFailed(ctx, lessonID, from, err)
	return err
}

func (m *Migrator) markFailed(ctx context.Context, lessonID string, from models.MigrationState, cause error) {
	message := cause.Error()
	update := &models.MigrationUpdate{LastError: &message}
	if from == models.MigrationPending {
		update.CountAttempt = true
	}

	if err := m.records.Transition(ctx, lessonID, from, models.MigrationFailed, update); err != nil {
		m.logger.Error("failed to record migration failure",
			"lesson_id", lessonID,
			"cause", cause,
			"error", err,
		)
	}
}

// fingerprint hashes the text form of doc. Section ids are not part of the
// text, so two conversions of the same legacy text share a fingerprint.
func (m *Migrator) fingerprint(doc *models.Document) string {
	sum := sha256.Sum256([]byte(m.fingerprintText.Extract(doc)))
	return hex.EncodeToString(sum[:])
}
