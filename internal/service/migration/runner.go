package migration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	models "carelearn/internal/domain/models/content"
)

// RunOptions controls a batch run of one step.
type RunOptions struct {
	Workers int
	// Limit caps how many rows are picked from the source state (0 = all).
	Limit int
	// IDs restricts the run to these lessons instead of listing by state.
	IDs []string
	// From overrides the state rows are picked from. Only rollback uses it.
	From   models.MigrationState
	DryRun bool
}

// RowFailure is one row that did not complete its step.
type RowFailure struct {
	LessonID string `json:"lesson_id"`
	Error    string `json:"error"`
}

// RunReport summarises a batch run.
type RunReport struct {
	Step      Step          `json:"step"`
	DryRun    bool          `json:"dry_run"`
	Selected  int           `json:"selected"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []RowFailure  `json:"failures,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Run applies step to every selected row with up to opts.Workers rows in
// flight. A failing row is recorded and does not stop the others; only
// cancellation of ctx aborts the run. Rows already past the step are
// skipped, so running the same step again is safe.
func (m *Migrator) Run(ctx context.Context, step Step, opts RunOptions) (*RunReport, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("unknown migration step %q", step)
	}

	ids, err := m.selectRows(ctx, step, opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	report := &RunReport{Step: step, DryRun: opts.DryRun, Selected: len(ids)}
	started := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := m.apply(gctx, step, id, opts.DryRun)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Succeeded++
			case errors.Is(err, errSkipped):
				report.Skipped++
				m.logger.Debug("migration row skipped", "step", step, "lesson_id", id, "reason", err)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				report.Failed++
				report.Failures = append(report.Failures, RowFailure{LessonID: id, Error: err.Error()})
				m.logger.Warn("migration row failed", "step", step, "lesson_id", id, "error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	report.Duration = time.Since(started)

	m.logger.Info("migration step finished",
		"step", step,
		"dry_run", opts.DryRun,
		"selected", report.Selected,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration,
	)

	if err != nil {
		return report, err
	}
	return report, ctx.Err()
}

func (m *Migrator) selectRows(ctx context.Context, step Step, opts RunOptions) ([]string, error) {
	if len(opts.IDs) > 0 {
		return opts.IDs, nil
	}

	from := step.source()
	if opts.From != "" {
		if step != StepRollback {
			return nil, fmt.Errorf("%s always reads %s rows", step, from)
		}
		if !opts.From.CanTransition(models.MigrationRolledBack) {
			return nil, fmt.Errorf("rows in state %s cannot be rolled back", opts.From)
		}
		from = opts.From
	}

	records, err := m.records.ListByState(ctx, from, opts.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.LessonID)
	}
	return ids, nil
}

func (m *Migrator) apply(ctx context.Context, step Step, lessonID string, dryRun bool) error {
	switch step {
	case StepTransform:
		return m.Transform(ctx, lessonID, dryRun)
	case StepVerify:
		return m.Verify(ctx, lessonID, dryRun)
	case StepFinalize:
		return m.Finalize(ctx, lessonID, dryRun)
	case StepRollback:
		return m.Rollback(ctx, lessonID, dryRun)
	}
	return fmt.Errorf("unknown migration step %q", step)
}
