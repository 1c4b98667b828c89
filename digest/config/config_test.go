package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_NAME", "digest")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_URL_SCHEMES", "HTTPS, http ,")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "digest", cfg.DBName)
	assert.Equal(t, []string{"https", "http"}, cfg.AllowedURLSchemes)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.True(t, cfg.MinIOUseSSL)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadConfigFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "digest.yaml")
	content := `
db_driver: sqlite
db_path: /tmp/digest.db
summary_sentences: 3
summarize_timeout: 2m
fetch_mode: browser
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SUMMARY_SENTENCES", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/digest.db", cfg.DBPath)
	assert.Equal(t, 7, cfg.SummarySentences)
	assert.Equal(t, 2*time.Minute, cfg.SummarizeTimeout)
	assert.Equal(t, FetchModeBrowser, cfg.FetchMode)
}

func TestLoadConfigInvalidInteger(t *testing.T) {
	t.Setenv("DB_NAME", "digest")
	t.Setenv("WORKER_QUEUE_SIZE", "lots")

	_, err := LoadConfig()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "WORKER_QUEUE_SIZE", cfgErr.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"postgres without name", func(c *Config) {}, "DB_NAME"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "" }, "DB_PATH"},
		{"bad fetch mode", func(c *Config) { c.DBName = "d"; c.FetchMode = "curl" }, "FETCH_MODE"},
		{"no schemes", func(c *Config) { c.DBName = "d"; c.AllowedURLSchemes = nil }, "ALLOWED_URL_SCHEMES"},
		{"zero workers", func(c *Config) { c.DBName = "d"; c.WorkerCount = 0 }, "WORKER_COUNT"},
		{"minio without bucket", func(c *Config) { c.DBName = "d"; c.MinIOEndpoint = "localhost:9000"; c.MinIOBucket = "" }, "MINIO_BUCKET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}

	cfg := Defaults()
	cfg.DBName = "digest"
	assert.NoError(t, cfg.Validate())
}

func TestLoadSkipsDatabaseValidation(t *testing.T) {
	t.Setenv("DB_NAME", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateSummarizer())
}
