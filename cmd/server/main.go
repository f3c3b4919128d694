package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"carelearn/internal/auth"
	"carelearn/internal/config"
	contentSvc "carelearn/internal/domain/services/content"
	"carelearn/internal/handler"
	"carelearn/internal/middleware"
	"carelearn/internal/repository/postgres"
	postgresContent "carelearn/internal/repository/postgres/content"
	serviceContent "carelearn/internal/service/content"
	"carelearn/internal/service/content/converter"
	"carelearn/internal/service/content/embed"
	"carelearn/internal/service/content/generator"
	"carelearn/internal/service/content/render"
	"carelearn/internal/service/content/sanitizer"
	"carelearn/internal/service/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, int32(cfg.DatabaseMaxConns))
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected", "max_conns", cfg.DatabaseMaxConns)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	lessonRepo := postgresContent.NewLessonRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Rendering pipeline
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

	// Generation is optional; the service reports it as unavailable when nil
	var contentGenerator contentSvc.Generator
	if cfg.GenerationEnabled {
		provider, err := generator.NewProvider(cfg)
		if err != nil {
			log.Fatalf("Failed to set up generation provider: %v", err)
		}
		gen, err := generator.NewGenerator(provider, cfg.GenerationModel, logger)
		if err != nil {
			log.Fatalf("Failed to set up generator: %v", err)
		}
		contentGenerator = gen
		logger.Info("content generation enabled", "provider", provider.Name().String(), "model", cfg.GenerationModel)
	} else {
		logger.Warn("content generation disabled")
	}

	lessonService := serviceContent.NewLessonService(
		lessonRepo,
		txManager,
		contentGenerator,
		renderer,
		htmlSanitizer,
		converter.NewMarkdownConverter(),
		logger,
	)

	router := handler.NewRouter(
		handler.NewLessonHandler(lessonService, logger),
		handler.NewRenderHandler(embedResolver, logger),
	)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = router
	if cfg.AuthJWKSURL != "" {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		h = middleware.Auth(verifier, logger, "/health")(h)
	} else {
		if cfg.Environment == "prod" {
			log.Fatal("AUTH_JWKS_URL must be set in production")
		}
		logger.Warn("DEV MODE: bearer authentication disabled, all requests act as dev-user")
		h = middleware.DevUser("dev-user")(h)
	}
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to answer OPTIONS pre-flight requests
	h = cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}).Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // generation calls can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
