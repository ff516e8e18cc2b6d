package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseSupabase = "supabase"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port           string   `env:"PORT" envDefault:"5250"`
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
		GinMode        string   `env:"GIN_MODE" envDefault:"release"`
	}

	Database struct {
		// sqlite for local snapshots, postgres or supabase for the hosted table
		Type        string `env:"DATABASE_TYPE" envDefault:"sqlite"`
		SQLitePath  string `env:"SQLITE_DB_PATH" envDefault:"database/properties.db"`
		PostgresDSN string `env:"DATABASE_URL"`

		// Rows fetched per round trip when scanning the whole table
		PageSize int `env:"DATABASE_PAGE_SIZE" envDefault:"1000"`
	}

	Cache struct {
		StatsTTL   time.Duration `env:"CACHE_STATS_TTL" envDefault:"5m"`
		HistoryTTL time.Duration `env:"CACHE_HISTORY_TTL" envDefault:"3m"`

		// Cron spec for re-computing the dashboard aggregates, empty disables warming
		WarmSchedule string `env:"CACHE_WARM_SCHEDULE" envDefault:"@every 4m"`
	}

	Auth struct {
		Username   string        `env:"DASHBOARD_USERNAME" envDefault:"admin"`
		Password   string        `env:"DASHBOARD_PASSWORD" envDefault:"admin"`
		JWTSecret  string        `env:"JWT_SECRET"`
		SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	}

	AI struct {
		GeminiAPIKey string        `env:"GEMINI_API_KEY"`
		DefaultModel string        `env:"AI_DEFAULT_MODEL" envDefault:"gemini-3-pro"`
		Timeout      time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
	}

	// BatchProcessing configuration for persisting generated copy history
	BatchProcessing struct {
		// Maximum number of history records written in one transaction
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"20"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"1"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries
		RetryDelay time.Duration `env:"BATCH_RETRY_DELAY" envDefault:"2s"`

		// Buffered batches before Push reports the queue as full
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"64"`
	}
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the combinations env.Parse cannot express.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("SQLITE_DB_PATH must be set when DATABASE_TYPE is sqlite")
		}
	case DatabasePostgres, DatabaseSupabase:
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL must be set when DATABASE_TYPE is %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("unknown DATABASE_TYPE: %s", c.Database.Type)
	}

	if c.Database.PageSize <= 0 {
		return errors.New("DATABASE_PAGE_SIZE must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Cache.StatsTTL <= 0 || c.Cache.HistoryTTL <= 0 {
		return errors.New("cache TTLs must be positive")
	}
	return nil
}
