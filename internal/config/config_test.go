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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
app:
  log_level: debug
api:
  base_url: https://api.taxirank.example
  timeout: 20s
storage:
  backend: file
  path: /tmp/creds.json
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://api.taxirank.example", cfg.APIBaseURL)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "/tmp/creds.json", cfg.StoragePath)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost:3000
  timeout: 15s
storage:
  backend: file
`)

	t.Setenv("TAXIRANK_API_URL", "http://10.0.2.2:3000")
	t.Setenv("TAXIRANK_STORAGE_BACKEND", "redis")
	t.Setenv("TAXIRANK_REDIS_ADDR", "localhost:6380")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.2.2:3000", cfg.APIBaseURL)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing base url", "storage:\n  backend: file\napi:\n  timeout: 5s\n"},
		{"unknown backend", "api:\n  base_url: http://x\n  timeout: 5s\nstorage:\n  backend: s3\n"},
		{"sqlite without path", "api:\n  base_url: http://x\n  timeout: 5s\nstorage:\n  backend: sqlite\n"},
		{"bad timeout", "api:\n  base_url: http://x\n  timeout: soon\nstorage:\n  backend: file\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
