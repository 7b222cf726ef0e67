// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local .env file is
loaded first (if present) so development machines do not need exported shells.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, MinIO) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mindvault/mindvault/internal/platform/sec"
)

// # Configuration Schema

// Config holds all runtime configuration for the MindVault API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing. Access and refresh tokens use independent secrets so
	// either family can be rotated without invalidating the other.
	JWTAccessSecret  string `env:"JWT_ACCESS_SECRET,required"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET,required"`

	// Token lifetimes, written as "<number><unit>" where unit is s, m, h or d.
	// Malformed values fall back to 900 seconds rather than failing startup.
	JWTAccessTTL  string `env:"JWT_ACCESS_TTL"  envDefault:"15m"`
	JWTRefreshTTL string `env:"JWT_REFRESH_TTL" envDefault:"7d"`

	// Object Storage (MinIO / S3-compatible)
	MinioEndpoint  string `env:"MINIO_ENDPOINT"   envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"     envDefault:"mindvault"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`

	// Upload limits and link lifetimes
	MaxFileSize     int64         `env:"MAX_FILE_SIZE"     envDefault:"10485760"`
	PresignedURLTTL time.Duration `env:"PRESIGNED_URL_TTL" envDefault:"15m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A .env file in the working directory is merged in first; real environment
// variables always win over file entries.
func Load() (*Config, error) {

	// Missing .env is the normal case in production
	_ = godotenv.Load()

	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// AccessTokenTTL resolves the configured access token lifetime.
// ok is false when the raw value was malformed and the fallback applied.
func (c *Config) AccessTokenTTL() (ttl time.Duration, ok bool) {
	return sec.ParseTTL(c.JWTAccessTTL)
}

// RefreshTokenTTL resolves the configured refresh token lifetime.
// ok is false when the raw value was malformed and the fallback applied.
func (c *Config) RefreshTokenTTL() (ttl time.Duration, ok bool) {
	return sec.ParseTTL(c.JWTRefreshTTL)
}

// ExtraOriginList splits the comma-separated EXTRA_ORIGINS value into a slice.
func (c *Config) ExtraOriginList() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
