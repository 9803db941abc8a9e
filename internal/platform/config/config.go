// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Pipeline) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Verbum API server.
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

	// Cryptographic keys for operator token verification
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// External translation service (LibreTranslate-compatible)
	Translator TranslatorConfig `envPrefix:"TRANSLATOR_"`

	// Clone pipeline tuning
	Pipeline PipelineConfig `envPrefix:"PIPELINE_"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// TranslatorConfig configures the outbound translation client.
type TranslatorConfig struct {
	URL      string        `env:"URL"      envDefault:"http://localhost:5000"`
	APIKey   string        `env:"API_KEY"`
	RPS      float64       `env:"RPS"      envDefault:"2"`
	Timeout  time.Duration `env:"TIMEOUT"  envDefault:"15s"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"720h"`
}

// PipelineConfig tunes batching and pacing of the language clone pipeline.
type PipelineConfig struct {
	BatchSize      int           `env:"BATCH_SIZE"       envDefault:"10"`
	BatchPause     time.Duration `env:"BATCH_PAUSE"      envDefault:"200ms"`
	TitlePauseEach int           `env:"TITLE_PAUSE_EVERY" envDefault:"5"`
	TitlePause     time.Duration `env:"TITLE_PAUSE"      envDefault:"1s"`
	RecordPause    time.Duration `env:"RECORD_PAUSE"     envDefault:"100ms"`
	SnapshotTTL    time.Duration `env:"SNAPSHOT_TTL"     envDefault:"168h"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.Pipeline.BatchSize <= 0 {
		return nil, fmt.Errorf("config: PIPELINE_BATCH_SIZE must be positive, got %d", cfg.Pipeline.BatchSize)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
