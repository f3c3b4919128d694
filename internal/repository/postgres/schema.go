package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the content tables if they don't exist.
//
// content holds the structured document (metadata included) and is NULL for
// rows that were never migrated; legacy_body is the free-text column the
// document replaces and is cleared when a row's migration is finalized.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				kind TEXT NOT NULL CHECK (kind IN ('lesson', 'session')),
				owner_id TEXT NOT NULL,
				title TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				content JSONB,
				legacy_body TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Lessons),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_kind_updated_idx ON %s (kind, updated_at DESC)`,
			tables.Lessons, tables.Lessons),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				lesson_id UUID PRIMARY KEY REFERENCES %s(id) ON DELETE CASCADE,
				state TEXT NOT NULL DEFAULT 'pending'
					CHECK (state IN ('pending', 'transformed', 'verified', 'finalized', 'failed', 'rolled_back')),
				attempts INTEGER NOT NULL DEFAULT 0,
				last_error TEXT,
				checksum TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.ContentMigrations, tables.Lessons),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_state_idx ON %s (state, updated_at)`,
			tables.ContentMigrations, tables.ContentMigrations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropTables removes the content tables. Used by the seed command only.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s CASCADE`, tables.ContentMigrations, tables.Lessons)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// TruncateTables deletes every lesson and migration record, keeping the schema.
func TruncateTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`TRUNCATE TABLE %s, %s`, tables.ContentMigrations, tables.Lessons)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
