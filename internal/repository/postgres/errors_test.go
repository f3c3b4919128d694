package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassifiers(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("query: %w", &pgconn.PgError{Code: code})
	}

	tests := []struct {
		name       string
		err        error
		noRows     bool
		invalid    bool
		foreignKey bool
	}{
		{name: "no rows", err: fmt.Errorf("get: %w", pgx.ErrNoRows), noRows: true},
		{name: "invalid uuid", err: wrap("22P02"), invalid: true},
		{name: "foreign key", err: wrap("23503"), foreignKey: true},
		{name: "unique violation", err: wrap("23505")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPgNoRowsError(tt.err); got != tt.noRows {
				t.Errorf("IsPgNoRowsError() = %v", got)
			}
			if got := IsPgInvalidTextError(tt.err); got != tt.invalid {
				t.Errorf("IsPgInvalidTextError() = %v", got)
			}
			if got := IsPgForeignKeyError(tt.err); got != tt.foreignKey {
				t.Errorf("IsPgForeignKeyError() = %v", got)
			}
		})
	}
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("test_")
	if tables.Lessons != "test_lessons" || tables.ContentMigrations != "test_content_migrations" {
		t.Errorf("tables = %+v", tables)
	}
}
