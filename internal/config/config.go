// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads application configuration from environment
// variables, after reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendValkey   = "valkey"
	BackendMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Editor
	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"nl"`
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`
	Seed          bool   `env:"SEED" envDefault:"false"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"mailforge"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"mailforge"`

	// Valkey (Redis-compatible). Empty host disables sessions and the
	// export cache in Valkey; in-process fallbacks are used instead.
	ValkeyHost     string `env:"VALKEY_HOST"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyDB       int    `env:"VALKEY_DB" envDefault:"0"`

	// Exports
	RasterizerURL  string        `env:"RASTERIZER_URL"`
	ExportCacheTTL time.Duration `env:"EXPORT_CACHE_TTL" envDefault:"30m"`

	// Sharing
	ShareWebhookURL string        `env:"SHARE_WEBHOOK_URL"`
	ShareTimeout    time.Duration `env:"SHARE_TIMEOUT" envDefault:"15s"`

	// S3-compatible object storage for published exports and image uploads
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3BucketPublic  string `env:"S3_BUCKET_PUBLIC" envDefault:"mailforge-public"`
	S3BucketPrivate string `env:"S3_BUCKET_PRIVATE" envDefault:"mailforge-private"`
	S3PublicURL     string `env:"S3_PUBLIC_URL"`
	MaxUploadMB     int64  `env:"MAX_UPLOAD_MB" envDefault:"5"`

	// HTTP protection
	RateLimit      int      `env:"RATE_LIMIT" envDefault:"300"` // requests per minute per client
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	SecureCookies  bool     `env:"SECURE_COOKIES" envDefault:"false"`
}

// Load reads an optional .env file, parses the environment and validates
// the result.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{"development", "production", "testing"}, c.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV %q is not one of development, production, testing", c.Env))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("APP_PORT %q is not a number", c.Port))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.Env == "production" && c.DBPassword == "changeme" {
			errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
		}
	case BackendValkey:
		if !c.ValkeyEnabled() {
			errs = append(errs, errors.New("STORE_BACKEND=valkey requires VALKEY_HOST"))
		}
	case BackendMemory:
		if c.Env == "production" {
			errs = append(errs, errors.New("STORE_BACKEND=memory loses templates on restart; not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of postgres, valkey, memory", c.StoreBackend))
	}

	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT must be positive"))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey server is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// MaxUploadBytes returns the image upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
