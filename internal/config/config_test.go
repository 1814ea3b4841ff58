package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
jwt:
  secret: short
admission:
  module_cache_ttl_seconds: 60
client:
  request_timeout_seconds: 3
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Admission.ModuleCacheTTL())
	assert.Equal(t, 5, cfg.Admission.CodeGenerationAttempts)
	assert.Equal(t, 3*time.Second, cfg.Client.RequestTimeout())
	assert.Equal(t, 30, cfg.RateLimit.JoinMaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.RateWindow())
}

func TestLoadConfigRejectsWeakSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: short
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfigDurationsAreWholeSeconds(t *testing.T) {
	dir := writeConfig(t, `
admission:
  module_cache_ttl_seconds: 3600
client:
  request_timeout_seconds: 0
`)
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Admission.ModuleCacheTTL())
	assert.Equal(t, 10*time.Second, cfg.Client.RequestTimeout())

	dir = writeConfig(t, `
admission:
  module_cache_ttl_seconds: "300s"
`)
	_, err = LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
