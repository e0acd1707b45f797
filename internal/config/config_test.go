package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Catalog.DebounceDelay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, "http://localhost:4000/proxy", cfg.CatalogProxyURL())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("TMDB_KEY", "legacy-key")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("LOG_MAX_BACKUPS", "9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "legacy-key", cfg.TMDB.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.True(t, cfg.Redis.TLS)
	assert.Equal(t, 9, cfg.Log.MaxBackups)
	assert.Equal(t, "http://localhost:8080/proxy", cfg.CatalogProxyURL())
}

func TestLoadPrefersTMDBAPIKey(t *testing.T) {
	t.Setenv("TMDB_KEY", "legacy-key")
	t.Setenv("TMDB_API_KEY", "new-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "new-key", cfg.TMDB.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "5000"
catalog:
  proxy_url: https://lbmovies.example/proxy
log:
  level: debug
  format: json
`), 0o600))

	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "https://lbmovies.example/proxy", cfg.CatalogProxyURL())
	assert.Equal(t, "json", cfg.Log.Format)
	// environment beats the file
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.EqualError(t, cfg.Validate(), "DATABASE_URL is required")

	cfg.Database.URL = "postgres://localhost/lbmovies"
	assert.EqualError(t, cfg.Validate(), "SECRET_KEY is required")

	cfg.Session.SecretKey = "short"
	assert.EqualError(t, cfg.Validate(), "SECRET_KEY must be at least 32 characters")

	cfg.Session.SecretKey = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}
