// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Redis, gateways) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Courtside BFF server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Session slot (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Reconciliation journal (PostgreSQL). Empty keeps the journal in memory.
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Upstream services
	PrimaryAPIURL   string        `env:"PRIMARY_API_URL"  envDefault:"http://localhost:8000/api/basketball"`
	IdentityAPIURL  string        `env:"IDENTITY_API_URL" envDefault:"http://localhost:8096"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`

	// Service account used by the identity gateway for person lookups.
	IdentityServiceEmail    string `env:"IDENTITY_SERVICE_EMAIL,required,notEmpty"`
	IdentityServicePassword string `env:"IDENTITY_SERVICE_PASSWORD,required,notEmpty"`

	// Browser session
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"courtside_sid"`
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"168h"`

	// Guard redirect targets
	LoginPath   string `env:"LOGIN_PATH"   envDefault:"/login"`
	LandingPath string `env:"LANDING_PATH" envDefault:"/"`

	// StaticDir holds the built single-page application, if served by this process.
	StaticDir string `env:"STATIC_DIR"`

	// Person enrichment cache
	PersonCacheSize int           `env:"PERSON_CACHE_SIZE" envDefault:"512"`
	PersonCacheTTL  time.Duration `env:"PERSON_CACHE_TTL"  envDefault:"5m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is normal outside development.
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("config: failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
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

// AllowedOrigins returns the comma separated EXTRA_ORIGINS as a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// JournalEnabled reports whether sagas are journaled to PostgreSQL.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}
