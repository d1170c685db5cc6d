// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mudler/xlog"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Agent kinds
const (
	AgentWebhook     = "webhook"
	AgentCompletions = "completions"
)

// Config stores all the configuration of the application
type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	FrontendOrigins []string `env:"FRONTEND_ORIGINS" envDefault:"*" envSeparator:","`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	DatabaseURL   string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DurableWorkflows bool `env:"DURABLE_WORKFLOWS" envDefault:"false"`

	AgentKind    string        `env:"AGENT_KIND" envDefault:"webhook"`
	AgentURL     string        `env:"AGENT_URL"`
	AgentAPIKey  string        `env:"AGENT_API_KEY"`
	AgentModel   string        `env:"AGENT_MODEL"`
	AgentTimeout time.Duration `env:"AGENT_TIMEOUT" envDefault:"15s"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			xlog.Debug("No .env file found, using environment variables only")
		} else {
			xlog.Warn("Error loading .env file", "error", err)
		}
	} else {
		xlog.Info("Environment loaded from .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver and agent settings. Missing optional pieces only log a warning.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.DurableWorkflows && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required when DURABLE_WORKFLOWS is enabled")
	}

	switch c.AgentKind {
	case AgentWebhook:
	case AgentCompletions:
		if c.AgentURL != "" && c.AgentModel == "" {
			return errors.New("AGENT_MODEL is required for the completions agent")
		}
	default:
		return fmt.Errorf("unknown AGENT_KIND %q", c.AgentKind)
	}

	if c.AgentURL == "" {
		xlog.Warn("AGENT_URL is not set, the creation agent will answer with a fallback reply")
	}
	if c.StorageDriver == DriverMemory {
		xlog.Info("Using in-memory storage, data is lost on restart")
	}
	return nil
}
