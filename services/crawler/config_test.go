// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for crawler configuration loading and validation

package crawler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ValidateConfig Tests
// =============================================================================

func TestValidateConfig_ZeroValueGetsDefaults(t *testing.T) {
	config := ValidateConfig(Config{})
	defaults := DefaultConfig()

	assert.Equal(t, defaults.MaxPages, config.MaxPages)
	assert.Equal(t, defaults.Concurrency, config.Concurrency)
	assert.Equal(t, defaults.RequestsPerSecond, config.RequestsPerSecond)
	assert.Equal(t, defaults.RequestTimeout, config.RequestTimeout)
	// MaxDepth 0 is legal: crawl the root page only.
	assert.Equal(t, 0, config.MaxDepth)
}

func TestValidateConfig_NegativeValuesReplaced(t *testing.T) {
	config := ValidateConfig(Config{
		MaxPages:          -5,
		MaxDepth:          -1,
		Concurrency:       -2,
		RequestsPerSecond: -1,
		RequestTimeout:    -time.Second,
	})
	defaults := DefaultConfig()

	assert.Equal(t, defaults.MaxPages, config.MaxPages)
	assert.Equal(t, defaults.MaxDepth, config.MaxDepth)
	assert.Equal(t, defaults.Concurrency, config.Concurrency)
	assert.Equal(t, defaults.RequestsPerSecond, config.RequestsPerSecond)
	assert.Equal(t, defaults.RequestTimeout, config.RequestTimeout)
}

func TestValidateConfig_ValidValuesUntouched(t *testing.T) {
	in := Config{
		MaxPages:          50,
		MaxDepth:          3,
		Concurrency:       8,
		RequestsPerSecond: 5,
		RequestTimeout:    30 * time.Second,
	}
	assert.Equal(t, in, ValidateConfig(in))
}

// =============================================================================
// LoadConfig Tests
// =============================================================================

func TestLoadConfig_NoPathReturnsDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_MissingFileFails(t *testing.T) {
	_, err := LoadConfig("/nonexistent/crawler.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	yaml := `crawler:
  max_pages: 25
  max_depth: 3
  concurrency: 8
  requests_per_second: 4.5
  request_timeout_seconds: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25, config.MaxPages)
	assert.Equal(t, 3, config.MaxDepth)
	assert.Equal(t, 8, config.Concurrency)
	assert.Equal(t, 4.5, config.RequestsPerSecond)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
}

func TestLoadConfig_ExplicitZeroDepthKept(t *testing.T) {
	// max_depth: 0 means root page only and must not fall back to the
	// default depth the way an absent key does.
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler:\n  max_depth: 0\n"), 0600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, config.MaxDepth)
}

func TestLoadConfig_AbsentDepthUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler:\n  max_pages: 5\n"), 0600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MaxDepth, config.MaxDepth)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler:\n  max_pages: 3\n"), 0600))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.MaxPages)
	assert.Equal(t, DefaultConfig().Concurrency, config.Concurrency)
}

func TestLoadConfig_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler: [not: a map"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler:\n  max_pages: 3\n"), 0600))

	t.Setenv("CRAWLER_MAX_PAGES", "7")
	t.Setenv("CRAWLER_REQUESTS_PER_SECOND", "9")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, config.MaxPages)
	assert.Equal(t, float64(9), config.RequestsPerSecond)
}

func TestLoadConfig_UnparseableEnvIgnored(t *testing.T) {
	t.Setenv("CRAWLER_MAX_PAGES", "lots")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MaxPages, config.MaxPages)
}
