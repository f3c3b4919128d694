package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carelearn/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Lessons           string
	ContentMigrations string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Lessons:           fmt.Sprintf("%slessons", prefix),
		ContentMigrations: fmt.Sprintf("%scontent_migrations", prefix),
	}
}

// CreateConnectionPool opens a pgx pool sized for maxConns and verifies it
// with a ping.
//
// pgx defaults to cached prepared statements, which a transaction-mode
// PgBouncer (port 6543 by convention) rejects. On that port the pool switches
// to QueryExecModeCacheDescribe unless the connection string already sets
// default_query_exec_mode. Table names are interpolated with fmt.Sprintf
// before the SQL reaches the database, so each prefix (dev_, test_, prod_)
// gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = min(5, maxConns)

	// CacheDescribe keeps the extended protocol, which the JSONB document column
	// needs, without creating server-side prepared statements. An explicit
	// default_query_exec_mode in the connection string takes precedence.
	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or pool when there is
// none. Every repository query goes through it.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
