// Package config loads application configuration from a YAML file with
// environment-variable overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Env names the deployment environment (dev, prod); prefixes log files
	Env string `yaml:"env" validate:"required"`

	// ListenAddr is the HTTP listen address, e.g. ":8080"
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// DatabaseURL is the Postgres connection string. Empty selects the
	// in-memory store (local/offline mode).
	DatabaseURL string `yaml:"database_url"`

	// NATSURL is the realtime channel. Empty selects the in-process bus.
	NATSURL string `yaml:"nats_url"`

	// Operators may mark flights operated and trigger assignment runs
	Operators []string `yaml:"operators" validate:"required,min=1,dive,email"`

	// Admins may additionally manage datasets, targets and the work date
	Admins []string `yaml:"admins" validate:"required,min=1,dive,email"`
}

// Load reads the config file, applies env overrides and validates.
// A .env file next to the binary is honored when present.
func Load(path string) (*Config, error) {
	godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Env:        "dev",
		ListenAddr: ":8080",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("FLIGHTGUARD_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("FLIGHTGUARD_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("FLIGHTGUARD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for missing or malformed fields
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
