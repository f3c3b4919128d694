// Command migrate moves lessons from the legacy free-text column to
// structured documents.
//
// Steps run in pipeline order when several are given:
//
//	migrate -plan -transform -verify          # stage and check, keep legacy text
//	migrate -finalize                         # drop legacy text of verified rows
//	migrate -rollback -from verified          # undo
//	migrate -audit -fix                       # restamp drifted metadata
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"carelearn/internal/config"
	models "carelearn/internal/domain/models/content"
	"carelearn/internal/repository/postgres"
	postgresContent "carelearn/internal/repository/postgres/content"
	"carelearn/internal/service/content/converter"
	"carelearn/internal/service/migration"
)

func main() {
	plan := flag.Bool("plan", false, "Record a pending migration row for every lesson with legacy text")
	retry := flag.Bool("retry", false, "With -plan, move failed and rolled-back rows back to pending")
	transform := flag.Bool("transform", false, "Convert pending rows to structured documents")
	verify := flag.Bool("verify", false, "Check transformed rows against their legacy text")
	finalize := flag.Bool("finalize", false, "Drop the legacy text of verified rows")
	rollback := flag.Bool("rollback", false, "Restore legacy text and clear the document")
	from := flag.String("from", "", "With -rollback, the state to roll back from (transformed, verified, finalized)")
	ids := flag.String("ids", "", "Comma-separated lesson ids to process instead of selecting by state")
	audit := flag.Bool("audit", false, "Report documents whose stored metadata disagrees with the tree")
	fix := flag.Bool("fix", false, "With -audit, write the recomputed metadata back")
	summary := flag.Bool("summary", false, "Print the number of rows in each migration state")
	dryRun := flag.Bool("dry-run", false, "Run checks without writing anything")
	markdown := flag.Bool("markdown-rollback", false, "Rebuild dropped legacy text as markdown instead of plain text")
	workers := flag.Int("workers", 0, "Rows processed concurrently (default MIGRATION_WORKERS)")
	limit := flag.Int("limit", 0, "Maximum rows per step (default MIGRATION_BATCH_SIZE, ignored with -ids)")
	flag.Parse()

	if *rollback && (*plan || *transform || *verify || *finalize) {
		log.Fatal("-rollback cannot be combined with forward steps")
	}
	if !(*plan || *transform || *verify || *finalize || *rollback || *audit || *summary) {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg, "migrate")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	if *workers <= 0 {
		*workers = cfg.MigrationWorkers
	}
	if *limit <= 0 {
		*limit = cfg.MigrationBatchSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Each worker holds at most one connection
	maxConns := max(cfg.DatabaseMaxConns, *workers+1)
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, int32(maxConns))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	rollbackText := converter.NewTextExtractor(logger)
	if *markdown {
		rollbackText = converter.NewMarkdownExtractor(logger)
	}

	records := postgresContent.NewMigrationRepository(repoConfig)
	migrator := migration.NewMigrator(
		postgresContent.NewLessonRepository(repoConfig),
		records,
		postgres.NewTransactionManager(pool, logger),
		converter.NewMarkdownConverter(),
		rollbackText,
		logger,
	)

	opts := migration.RunOptions{
		Workers: *workers,
		Limit:   *limit,
		IDs:     splitIDs(*ids),
		From:    models.MigrationState(*from),
		DryRun:  *dryRun,
	}

	failed := false

	if *plan {
		if *dryRun {
			logger.Warn("-plan ignores -dry-run: planning only records pending rows")
		}
		report, err := migrator.Plan(ctx, migration.PlanOptions{Retry: *retry})
		if err != nil {
			log.Fatalf("Plan failed: %v", err)
		}
		printJSON("plan", report)
	}

	var steps []migration.Step
	switch {
	case *rollback:
		steps = []migration.Step{migration.StepRollback}
	default:
		if *transform {
			steps = append(steps, migration.StepTransform)
		}
		if *verify {
			steps = append(steps, migration.StepVerify)
		}
		if *finalize {
			steps = append(steps, migration.StepFinalize)
		}
	}

	for _, step := range steps {
		stepOpts := opts
		if step != migration.StepRollback {
			stepOpts.From = ""
		}
		report, err := migrator.Run(ctx, step, stepOpts)
		if report != nil {
			printJSON(string(step), report)
			failed = failed || report.Failed > 0
		}
		if err != nil {
			log.Fatalf("%s failed: %v", step, err)
		}
	}

	if *audit {
		report, err := migrator.Audit(ctx, *workers, *fix && !*dryRun)
		if err != nil {
			log.Fatalf("Audit failed: %v", err)
		}
		printJSON("audit", report)
		failed = failed || len(report.Errors) > 0
	}

	if *summary {
		counts, err := records.Summary(ctx)
		if err != nil {
			log.Fatalf("Summary failed: %v", err)
		}
		printJSON("summary", counts)
	}

	if failed {
		stop()
		pool.Close()
		closeLog()
		os.Exit(1)
	}
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func printJSON(label string, v interface{}) {
	out, err := json.MarshalIndent(map[string]interface{}{label: v}, "", "  ")
	if err != nil {
		log.Printf("failed to encode %s report: %v", label, err)
		return
	}
	os.Stdout.Write(append(out, '\n'))
}
