package content

import (
	"context"

	models "carelearn/internal/domain/models/content"
)

// MigrationRepository persists per-row legacy migration state
type MigrationRepository interface {
	// EnsurePending inserts a pending record for each id without one.
	// Returns the number of records created.
	EnsurePending(ctx context.Context, lessonIDs []string) (int, error)

	Get(ctx context.Context, lessonID string) (*models.MigrationRecord, error)

	// ListByState returns records in the given state, oldest first, up to limit (0 = all)
	ListByState(ctx context.Context, state models.MigrationState, limit int) ([]models.MigrationRecord, error)

	// Transition moves a record from one state to another atomically. It fails
	// with domain.ErrInvalidTransition when the stored state is not from.
	Transition(ctx context.Context, lessonID string, from, to models.MigrationState, update *models.MigrationUpdate) error

	Summary(ctx context.Context) (models.MigrationSummary, error)
}
