// Package config handles application configuration loading from environment
// variables with sensible defaults for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Model    ModelConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis connection settings. Redis is optional: when
// Enabled is false the catalog cache is skipped entirely.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// Mode selects token verification: "internal" issues and verifies
	// HS256 tokens locally, "mock" accepts any bearer token and derives
	// a stable identity from it (useful for development), "static"
	// accepts exactly the preconfigured token.
	Mode        string
	JWTSecret   string
	StaticToken string
	TokenTTL    time.Duration
	BcryptCost  int
}

// Secret returns the token-manager secret for the active mode.
func (a AuthConfig) Secret() string {
	if a.Mode == "static" {
		return a.StaticToken
	}
	return a.JWTSecret
}

// ModelConfig holds prediction model settings.
type ModelConfig struct {
	// ArtifactPath points to a JSON linear model artifact. Empty path
	// means the deterministic mock model is used.
	ArtifactPath string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "unitrack-api"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		},
		HTTP: HTTPConfig{
			Host:            getEnv("HTTP_HOST", "0.0.0.0"),
			Port:            getEnvInt("HTTP_PORT", 8000),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "unitrack"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "unitrack"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 10*time.Minute),
		},
		Auth: AuthConfig{
			Mode:        getEnv("AUTH_MODE", "mock"),
			JWTSecret:   getEnv("JWT_SECRET", ""),
			StaticToken: getEnv("AUTH_STATIC_TOKEN", ""),
			TokenTTL:    getEnvDuration("JWT_TOKEN_TTL", 24*time.Hour),
			BcryptCost:  getEnvInt("BCRYPT_COST", 10),
		},
		Model: ModelConfig{
			ArtifactPath: getEnv("MODEL_ARTIFACT_PATH", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTP.Port)
	}
	switch c.Auth.Mode {
	case "mock", "internal", "static":
	default:
		return fmt.Errorf("invalid AUTH_MODE: %q (expected mock, internal or static)", c.Auth.Mode)
	}
	if c.Auth.Mode == "internal" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=internal")
	}
	if c.Auth.Mode == "static" && c.Auth.StaticToken == "" {
		return fmt.Errorf("AUTH_STATIC_TOKEN is required when AUTH_MODE=static")
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("either DATABASE_URL or DB_HOST must be set")
	}
	return nil
}

// DSN builds a PostgreSQL connection string. DATABASE_URL takes
// precedence when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// IsDevelopment reports whether the app runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Environment, "development")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
