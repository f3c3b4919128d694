package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"carelearn/internal/config"
	"carelearn/internal/repository/postgres"
	postgresContent "carelearn/internal/repository/postgres/content"
	"carelearn/internal/seed"
	serviceContent "carelearn/internal/service/content"
	"carelearn/internal/service/content/converter"
	"carelearn/internal/service/content/embed"
	"carelearn/internal/service/content/render"
	"carelearn/internal/service/content/sanitizer"
	"carelearn/internal/service/storage"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed lessons")
	clearData := flag.Bool("clear-data", false, "Delete all lessons and migration records (keep schema)")
	ownerID := flag.String("owner", "dev-user", "Owner id stamped on seeded lessons")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: -drop-tables and -clear-data are not allowed in production")
	}

	logger, closeLog, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, int32(cfg.DatabaseMaxConns))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	logger.Info("seed starting", "environment", cfg.Environment, "table_prefix", cfg.TablePrefix)

	if *dropTables {
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		logger.Info("tables dropped")
	}

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready")

	if *schemaOnly {
		return
	}

	if err := postgres.TruncateTables(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	logger.Info("existing lessons cleared")
	if *clearData {
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	lessonRepo := postgresContent.NewLessonRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	htmlSanitizer, err := sanitizer.NewHTMLSanitizer()
	if err != nil {
		log.Fatalf("Failed to load sanitizer allow-list: %v", err)
	}
	embedResolver, err := embed.NewDefaultResolver()
	if err != nil {
		log.Fatalf("Failed to load embed hosts: %v", err)
	}
	storageResolver, err := storage.NewPublicURLResolver(cfg.StoragePublicURL)
	if err != nil {
		log.Fatalf("Failed to configure storage: %v", err)
	}
	renderer := render.NewHTMLRenderer(htmlSanitizer, htmlSanitizer.DefaultAllowList(), embedResolver, storageResolver, logger)

	// Seeding never generates; a nil generator keeps it offline
	lessonService := serviceContent.NewLessonService(lessonRepo, txManager, nil, renderer, htmlSanitizer, converter.NewMarkdownConverter(), logger)

	report, err := seed.NewLessonSeeder(lessonRepo, lessonService, logger).Seed(ctx, *ownerID)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("seeding complete",
		"structured", report.Structured,
		"legacy", report.Legacy,
		"failed", report.Failed,
	)
}
