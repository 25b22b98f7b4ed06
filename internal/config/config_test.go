package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefault(t *testing.T) {
	cfg := CreateDefault()

	assert.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 180*24*time.Hour, cfg.Pipeline.RecencyWindow)
	assert.Equal(t, 200, cfg.Pipeline.MinContentLength)
	assert.Equal(t, 10, cfg.Pipeline.MaxListingLinks)
	assert.NotEmpty(t, cfg.Scraper.UserAgents)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	content := `
scraper:
  timeout: 5s
  max_retries: 1
pipeline:
  workers: 3
  max_listing_links: 4
  min_content_length: 150
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 1, cfg.Scraper.MaxRetries)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 4, cfg.Pipeline.MaxListingLinks)
	assert.Equal(t, 150, cfg.Pipeline.MinContentLength)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, 2, cfg.Browser.PoolSize)
	assert.Equal(t, 180*24*time.Hour, cfg.Pipeline.RecencyWindow)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644))

	t.Setenv("ENRICHMENT_API_KEY", "secret-key")
	t.Setenv("STORE_URI", "mongodb://localhost:27017")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Enrichment.APIKey)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.URI)
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  workers: -1\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "workers")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
