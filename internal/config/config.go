// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. A local .env file is read first (without overriding real
// environment variables), then the Config struct is populated via envconfig.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port string `envconfig:"APP_PORT" default:"8080"`
	Env  string `envconfig:"APP_ENV" default:"development"` // "development", "production", "testing"

	// Stable Diffusion backend API. SD_API_URL has no envconfig default so
	// Load can tell "unset" apart from an explicitly configured localhost.
	SDAPIURL          string        `envconfig:"SD_API_URL"`
	SDGenerateTimeout time.Duration `envconfig:"SD_GENERATE_TIMEOUT" default:"120s"`

	// Browser origins allowed by the CORS middleware. The defaults match
	// the dev servers the diffusion backend itself allows.
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://localhost:8080"`

	// Per-IP rate limiting for the generation endpoints.
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Load reads configuration from the environment, applying defaults for
// development where appropriate. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.SDAPIURL == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("SD_API_URL must be set in production")
		}
		cfg.SDAPIURL = "http://localhost:8000"
	}

	return &cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
