package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	PDF       PDFConfig
	Reminders RemindersConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

// DatabaseConfig holds PostgreSQL connection options.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"buildflow"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// AuthConfig holds token signing options.
type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// StorageConfig holds blob store options.
type StorageConfig struct {
	Root    string `envconfig:"STORAGE_ROOT" default:"./data/blobs"`
	BaseURL string `envconfig:"STORAGE_BASE_URL" default:"http://localhost:8080"`
}

// PDFConfig holds options for the Gotenberg-compatible renderer.
type PDFConfig struct {
	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://localhost:3000"`
}

// RemindersConfig holds scheduler-related settings.
type RemindersConfig struct {
	CronSchedule string `envconfig:"REMINDER_CRON_SCHEDULE" default:"0 8 * * *"`
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("PORT must be provided")
	}

	if c.Auth.JWTSecret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return errors.New("JWT_SECRET must be provided in release mode")
		}
		c.Auth.JWTSecret = "default_super_secret_key" // Development fallback only
	}

	return nil
}

// DSN builds the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=" + c.SSLMode
}
