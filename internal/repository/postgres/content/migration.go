package content

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carelearn/internal/domain"
	models "carelearn/internal/domain/models/content"
	contentRepo "carelearn/internal/domain/repositories/content"
	"carelearn/internal/repository/postgres"
)

const migrationColumns = `lesson_id, state, attempts, last_error, checksum, created_at, updated_at`

// PostgresMigrationRepository implements the MigrationRepository interface.
// One row per lesson records where that lesson is in the legacy migration.
type PostgresMigrationRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewMigrationRepository creates a new migration repository
func NewMigrationRepository(config *postgres.RepositoryConfig) contentRepo.MigrationRepository {
	return &PostgresMigrationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// EnsurePending inserts a pending record for every id that has none.
// Existing records keep their state, which is what makes a run resumable.
func (r *PostgresMigrationRepository) EnsurePending(ctx context.Context, lessonIDs []string) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (lesson_id, state)
		SELECT id::uuid, 'pending' FROM unnest($1::text[]) AS id
		ON CONFLICT (lesson_id) DO NOTHING
	`, r.tables.ContentMigrations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, lessonIDs)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("%w: a lesson was deleted while planning, run -plan again", domain.ErrConflict)
		}
		return 0, fmt.Errorf("ensure pending migrations: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// Get retrieves the record for one lesson
func (r *PostgresMigrationRepository) Get(ctx context.Context, lessonID string) (*models.MigrationRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lesson_id = $1`, migrationColumns, r.tables.ContentMigrations)

	executor := postgres.GetExecutor(ctx, r.pool)
	record, err := scanMigration(executor.QueryRow(ctx, query, lessonID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, &domain.NotFoundError{ResourceType: "migration", ResourceID: lessonID}
		}
		return nil, fmt.Errorf("get migration: %w", err)
	}

	return record, nil
}

// ListByState returns records in state, least recently touched first
func (r *PostgresMigrationRepository) ListByState(ctx context.Context, state models.MigrationState, limit int) ([]models.MigrationRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE state = $1
		ORDER BY updated_at, lesson_id
		LIMIT NULLIF($2::int, 0)
	`, migrationColumns, r.tables.ContentMigrations)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, string(state), limit)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	records := []models.MigrationRecord{}
	for rows.Next() {
		record, err := scanMigration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}

	return records, nil
}

// Transition moves a record from one state to another. The state check and
// the write are a single UPDATE, so two workers can never both advance the
// same row.
func (r *PostgresMigrationRepository) Transition(ctx context.Context, lessonID string, from, to models.MigrationState, update *models.MigrationUpdate) error {
	if !from.CanTransition(to) {
		return &domain.TransitionError{LessonID: lessonID, From: string(from), To: string(to)}
	}
	if update == nil {
		update = &models.MigrationUpdate{}
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			state = $3,
			attempts = attempts + CASE WHEN $4::boolean THEN 1 ELSE 0 END,
			last_error = CASE WHEN $5::boolean THEN NULL ELSE COALESCE($6::text, last_error) END,
			checksum = COALESCE($7::text, checksum),
			updated_at = NOW()
		WHERE lesson_id = $1 AND state = $2
	`, r.tables.ContentMigrations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		lessonID,
		string(from),
		string(to),
		update.CountAttempt,
		update.ClearError,
		update.LastError,
		update.Checksum,
	)
	if err != nil {
		return fmt.Errorf("transition migration: %w", err)
	}

	if result.RowsAffected() == 0 {
		current, err := r.Get(ctx, lessonID)
		if err != nil {
			return err
		}
		return &domain.TransitionError{LessonID: lessonID, From: string(current.State), To: string(to)}
	}

	return nil
}

// Summary counts records per state
func (r *PostgresMigrationRepository) Summary(ctx context.Context) (models.MigrationSummary, error) {
	query := fmt.Sprintf(`SELECT state, COUNT(*) FROM %s GROUP BY state`, r.tables.ContentMigrations)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("summarize migrations: %w", err)
	}
	defer rows.Close()

	summary := models.MigrationSummary{}
	for rows.Next() {
		var state models.MigrationState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan migration summary: %w", err)
		}
		summary[state] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration summary: %w", err)
	}

	return summary, nil
}

func scanMigration(row pgx.Row) (*models.MigrationRecord, error) {
	var record models.MigrationRecord
	err := row.Scan(
		&record.LessonID,
		&record.State,
		&record.Attempts,
		&record.LastError,
		&record.Checksum,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
