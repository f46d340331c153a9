package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultValidateURL, cfg.API.ValidateURL)
	assert.Equal(t, DefaultModelURL, cfg.API.ModelURL)
	assert.Equal(t, 1200*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 5, cfg.API.MaxAttempts)
	assert.Equal(t, time.Second, cfg.API.RetryDelay)
	assert.Equal(t, "FAAS_ACCESS_TOKEN", cfg.Auth.TokenEnv)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faas.yaml")
	content := `
api:
  validate_url: http://localhost:9000/api/v1/validate
  max_attempts: 3
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("FAAS_CONFIG", path)
	t.Setenv("FAAS_API_RETRY_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api/v1/validate", cfg.API.ValidateURL)
	assert.Equal(t, 3, cfg.API.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.API.RetryDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultModelURL, cfg.API.ModelURL)
}

func TestLoadRejectsInvalidAttempts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  max_attempts: 0\n"), 0o600))
	t.Setenv("FAAS_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("FAAS_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
