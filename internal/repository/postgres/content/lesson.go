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

const lessonColumns = `id, kind, owner_id, title, category, content, legacy_body, created_at, updated_at`

// PostgresLessonRepository implements the LessonRepository interface.
// The document is stored as JSONB and encoded by pgx's JSON codec.
type PostgresLessonRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(config *postgres.RepositoryConfig) contentRepo.LessonRepository {
	return &PostgresLessonRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a lesson and fills in its generated id and timestamps
func (r *PostgresLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kind, owner_id, title, category, content, legacy_body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Lessons)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		lesson.Kind,
		lesson.OwnerID,
		lesson.Title,
		lesson.Category,
		lesson.Content,
		lesson.LegacyBody,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID retrieves a lesson by ID
func (r *PostgresLessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, lessonColumns, r.tables.Lessons)

	executor := postgres.GetExecutor(ctx, r.pool)
	lesson, err := scanLesson(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, &domain.NotFoundError{ResourceType: "lesson", ResourceID: id}
		}
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	return lesson, nil
}

// List retrieves lessons of one kind (all kinds when empty), newest first
func (r *PostgresLessonRepository) List(ctx context.Context, kind models.Kind) ([]models.Lesson, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE $1 = '' OR kind = $1
		ORDER BY updated_at DESC
	`, lessonColumns, r.tables.Lessons)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, *lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}

// UpdateContent writes the structured document
func (r *PostgresLessonRepository) UpdateContent(ctx context.Context, id string, doc *models.Document) error {
	query := fmt.Sprintf(`UPDATE %s SET content = $2, updated_at = NOW() WHERE id = $1`, r.tables.Lessons)
	return r.execOne(ctx, "update lesson content", id, query, id, doc)
}

// SetLegacyBody writes or clears the legacy text column
func (r *PostgresLessonRepository) SetLegacyBody(ctx context.Context, id string, body *string) error {
	query := fmt.Sprintf(`UPDATE %s SET legacy_body = $2, updated_at = NOW() WHERE id = $1`, r.tables.Lessons)
	return r.execOne(ctx, "set legacy body", id, query, id, body)
}

// ClearContent sets the structured column back to NULL
func (r *PostgresLessonRepository) ClearContent(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET content = NULL, updated_at = NOW() WHERE id = $1`, r.tables.Lessons)
	return r.execOne(ctx, "clear lesson content", id, query, id)
}

// Delete deletes a lesson; its migration record goes with it
func (r *PostgresLessonRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Lessons)
	return r.execOne(ctx, "delete lesson", id, query, id)
}

// ListLegacyIDs returns ids of lessons that still carry legacy text, oldest first
func (r *PostgresLessonRepository) ListLegacyIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE legacy_body IS NOT NULL ORDER BY created_at`, r.tables.Lessons)
	return r.listIDs(ctx, "list legacy lessons", query)
}

// ListContentIDs returns ids of lessons that have a structured document, oldest first
func (r *PostgresLessonRepository) ListContentIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE content IS NOT NULL ORDER BY created_at`, r.tables.Lessons)
	return r.listIDs(ctx, "list structured lessons", query)
}

func (r *PostgresLessonRepository) execOne(ctx context.Context, op, id, query string, args ...interface{}) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return &domain.NotFoundError{ResourceType: "lesson", ResourceID: id}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "lesson", ResourceID: id}
	}

	return nil
}

func (r *PostgresLessonRepository) listIDs(ctx context.Context, op, query string) ([]string, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

func scanLesson(row pgx.Row) (*models.Lesson, error) {
	var lesson models.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.Kind,
		&lesson.OwnerID,
		&lesson.Title,
		&lesson.Category,
		&lesson.Content,
		&lesson.LegacyBody,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
