// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers env expansion, duration parsing, and required fields

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registrar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Complete(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/registrar.db"
auth:
  jwt_secret: "supersecret"
  token_ttl: "12h"
cors:
  allowed_origins:
    - "https://campus.example.edu"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/registrar.db", cfg.Database.Path)
	assert.Equal(t, "supersecret", cfg.Auth.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://campus.example.edu"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("REGISTRAR_TEST_SECRET", "from-env")

	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/registrar.db"
auth:
  jwt_secret: "${REGISTRAR_TEST_SECRET}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_DefaultTokenTTL(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/registrar.db"
auth:
  jwt_secret: "supersecret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, cfg.Auth.TokenTTL)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "no http_addr",
			content: `
database:
  path: "/tmp/registrar.db"
auth:
  jwt_secret: "s"
`,
		},
		{
			name: "no database path",
			content: `
server:
  http_addr: ":8080"
auth:
  jwt_secret: "s"
`,
		},
		{
			name: "no jwt secret",
			content: `
server:
  http_addr: ":8080"
database:
  path: "/tmp/registrar.db"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/registrar.db"
auth:
  jwt_secret: "s"
  token_ttl: "soon"
`)

	_, err := Load(path)
	assert.Error(t, err)
}
