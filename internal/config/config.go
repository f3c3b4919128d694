package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	// DatabaseMaxConns caps the pgx pool; migration workers share it
	DatabaseMaxConns int
	CORSOrigins      string
	TablePrefix      string
	// Auth - bearer verification is skipped when AuthJWKSURL is empty (dev only)
	AuthJWKSURL string
	// Storage collaborator: media paths are resolved against this base
	StoragePublicURL string
	// Content generation
	AnthropicAPIKey   string
	GenerationModel   string
	GenerationEnabled bool
	// Migration runner
	MigrationWorkers   int
	MigrationBatchSize int
	// Logging - LogDir empty means stdout only
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:   getEnvInt("DATABASE_MAX_CONNS", 25),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:        getTablePrefix(env),
		AuthJWKSURL:        getEnv("AUTH_JWKS_URL", ""),
		StoragePublicURL:   getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		GenerationModel:    getEnv("GENERATION_MODEL", "claude-haiku-4-5-20251001"),
		GenerationEnabled:  getEnv("GENERATION_ENABLED", "true") == "true",
		MigrationWorkers:   getEnvInt("MIGRATION_WORKERS", 4),
		MigrationBatchSize: getEnvInt("MIGRATION_BATCH_SIZE", 200),
		LogDir:             getEnv("LOG_DIR", ""),
		LogMaxFiles:        getEnvInt("LOG_MAX_FILES", 10),
		// default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// GenerationProvider picks the provider: anthropic when a key is configured,
// otherwise the offline lorem provider.
func (c *Config) GenerationProvider() string {
	if c.AnthropicAPIKey != "" {
		return "anthropic"
	}
	return "lorem"
}

func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
