package migration

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"carelearn/internal/service/content/metadata"
)

// AuditFinding is one lesson whose stored metadata disagrees with its tree.
type AuditFinding struct {
	LessonID      string                 `json:"lesson_id"`
	Discrepancies []metadata.Discrepancy `json:"discrepancies"`
	Fixed         bool                   `json:"fixed"`
}

// AuditReport summarises an audit.
type AuditReport struct {
	Checked  int            `json:"checked"`
	Findings []AuditFinding `json:"findings"`
	Errors   []RowFailure   `json:"errors,omitempty"`
}

// Audit recomputes the metadata of every structured document and reports
// the ones whose stored counts drifted. With fix set the derived counts are
// written back.
func (m *Migrator) Audit(ctx context.Context, workers int, fix bool) (*AuditReport, error) {
	ids, err := m.lessons.ListContentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list structured lessons: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	report := &AuditReport{Findings: []AuditFinding{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range ids {
		g.Go(func() error {
			finding, err := m.auditLesson(gctx, id, fix)

			mu.Lock()
			defer mu.Unlock()
			if gctx.Err() != nil {
				return gctx.Err()
			}
			report.Checked++
			if err != nil {
				report.Errors = append(report.Errors, RowFailure{LessonID: id, Error: err.Error()})
				m.logger.Warn("audit failed for lesson", "lesson_id", id, "error", err)
				return nil
			}
			if finding != nil {
				report.Findings = append(report.Findings, *finding)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	m.logger.Info("metadata audit finished",
		"checked", report.Checked,
		"inconsistent", len(report.Findings),
		"errors", len(report.Errors),
		"fix", fix,
	)
	return report, nil
}

func (m *Migrator) auditLesson(ctx context.Context, lessonID string, fix bool) (*AuditFinding, error) {
	var finding *AuditFinding

	err := m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		lesson, err := m.lessons.GetByID(txCtx, lessonID)
		if err != nil {
			return err
		}
		if lesson.Content == nil {
			return nil
		}

		discrepancies := metadata.Verify(lesson.Content)
		if len(discrepancies) == 0 {
			return nil
		}
		finding = &AuditFinding{LessonID: lessonID, Discrepancies: discrepancies}

		if !fix {
			return nil
		}
		metadata.Stamp(lesson.Content)
		if err := m.lessons.UpdateContent(txCtx, lessonID, lesson.Content); err != nil {
			return err
		}
		finding.Fixed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finding, nil
}
