// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every mapped variable for the duration of the test so the
// host environment cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()

	for key := range envKeyMap {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/callboard
redis:
  url: redis://localhost:6379/0
pagination:
  page_size: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Callboard", cfg.App.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Pagination.PageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, "callboard:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://file/callboard
redis:
  url: redis://localhost:6379/0
`)
	t.Setenv("DATABASE_URL", "postgres://env/callboard")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/callboard", cfg.Database.URL)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing database url",
			body: "redis:\n  url: redis://localhost\n",
		},
		{
			name: "missing redis url",
			body: "database:\n  url: postgres://localhost\n",
		},
		{
			name: "wildcard origin with credentials",
			body: `
database:
  url: postgres://localhost
redis:
  url: redis://localhost
cors:
  allowed_origins: ["*"]
`,
		},
		{
			name: "max page size below page size",
			body: `
database:
  url: postgres://localhost
redis:
  url: redis://localhost
pagination:
  page_size: 50
  max_page_size: 10
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ValidationNamesFields(t *testing.T) {
	_, err := Load(writeConfig(t, `
log:
  level: verbose
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url: required")
	assert.Contains(t, err.Error(), "redis.url: required")
	assert.Contains(t, err.Error(), "log.level: must be one of debug info warn error")
}

func TestLoad_ProductionRejectsInsecureOtel(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost
redis:
  url: redis://localhost
`)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OTEL_ENABLED", "true")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "otel.insecure")

	t.Setenv("OTEL_INSECURE", "false")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
