package config_test

import (
	"os"
	"path/filepath"
	"planboard/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  host: "127.0.0.1"
repository:
  type: sqlite
worker:
  interval: 30s
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddr())
	assert.Equal(t, "sqlite", cfg.Repository.Type)
	assert.Equal(t, 30*time.Second, cfg.Worker.Interval)
	assert.Equal(t, 100, cfg.Worker.BatchSize)
	assert.Equal(t, 100, cfg.Server.RateLimit)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))

	require.NoError(t, err)
	assert.Equal(t, "inmemory", cfg.Repository.Type)
	assert.Equal(t, ":8080", cfg.GetServerAddr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REPOSITORY_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/planboard")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := config.Load(writeConfig(t, "repository:\n  type: inmemory\n"))

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Repository.Type)
	assert.Equal(t, "postgres://u:p@db:5432/planboard", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.True(t, cfg.Logging.Development)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown repository", body: "repository:\n  type: mongo\n"},
		{name: "postgres without url", body: "repository:\n  type: postgres\n"},
		{name: "broken yaml", body: "server: [\n"},
		{name: "bad bool", body: "", env: map[string]string{"LOG_DEVELOPMENT": "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
