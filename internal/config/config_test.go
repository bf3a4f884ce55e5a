package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		Env:         "dev",
		ListenAddr:  ":8080",
		DatabaseURL: "postgres://localhost/flightguard",
		Operators:   []string{"ops@example.com"},
		Admins:      []string{"admin@example.com"},
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{
		Env:        "dev",
		ListenAddr: ":8080",
		Operators:  []string{"ops@example.com"},
		Admins:     []string{"admin@example.com"},
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MissingAdmins(t *testing.T) {
	cfg := &Config{
		Env:        "dev",
		ListenAddr: ":8080",
		Operators:  []string{"ops@example.com"},
	}

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestValidate_BadOperatorIdentity(t *testing.T) {
	cfg := &Config{
		Env:        "dev",
		ListenAddr: ":8080",
		Operators:  []string{"not-an-email"},
		Admins:     []string{"admin@example.com"},
	}

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: prod
listen_addr: ":9090"
database_url: postgres://db/flightguard
operators:
  - ops@example.com
admins:
  - admin@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres://db/flightguard", cfg.DatabaseURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: dev
listen_addr: ":8080"
operators:
  - ops@example.com
admins:
  - admin@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("FLIGHTGUARD_DATABASE_URL", "postgres://override/db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://override/db", cfg.DatabaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
