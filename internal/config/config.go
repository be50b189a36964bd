package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration, loaded from the environment.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"3000"`

	// Database configuration
	DBType            string `envconfig:"DB_TYPE" default:"postgres"` // mysql, mariadb, postgres, sqlite, sqlserver
	DBHost            string `envconfig:"DB_HOST" default:"localhost"`
	DBPort            string `envconfig:"DB_PORT" default:"5432"`
	DBName            string `envconfig:"DB_NAME" required:"true"`
	DBUser            string `envconfig:"DB_USER"`
	DBPassword        string `envconfig:"DB_PASSWORD"`
	DBConnectionLimit int    `envconfig:"DB_CONNECTION_LIMIT" default:"5"`

	// Open Library lookup configuration
	OpenLibraryBaseURL string        `envconfig:"OPEN_LIBRARY_BASE_URL" default:"https://openlibrary.org"`
	OpenLibraryTimeout time.Duration `envconfig:"OPEN_LIBRARY_TIMEOUT" default:"10s"`

	// Session configuration
	SessionExpiration time.Duration `envconfig:"SESSION_EXPIRATION" default:"24h"`
}

// Load loads the configuration from environment variables, after a
// best-effort read of a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &c, nil
}
