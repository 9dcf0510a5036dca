package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLLMRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := LoadLLM()
	assert.Error(t, err)
}

func TestLoadLLMDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := LoadLLM()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Empty(t, cfg.BaseURL)
	assert.Positive(t, cfg.MaxTokens)
}

func TestLoadLLMOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("OPENAI_MODEL", "llama3")

	cfg, err := LoadLLM()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, "llama3", cfg.Model)
}

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, "demo-mcp-server", cfg.Name)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, Duration(30*time.Second), cfg.Fetcher.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.Fetcher.MaxBodySize)
	assert.NotEmpty(t, cfg.Fetcher.UserAgent)
}

func TestLoadServerFromFile(t *testing.T) {
	t.Setenv("TEST_SERVER_NAME", "custom-server")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
name: ${TEST_SERVER_NAME}
version: 2.0.0
fetcher:
  userAgent: custom-agent/1.0
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-server", cfg.Name)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, "custom-agent/1.0", cfg.Fetcher.UserAgent)
	assert.Equal(t, Duration(5*time.Second), cfg.Fetcher.Timeout)
	// Unset fields keep their defaults.
	assert.Equal(t, int64(10*1024*1024), cfg.Fetcher.MaxBodySize)
}

func TestLoadServerMissingFile(t *testing.T) {
	_, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "")
	assert.Equal(t, "fallback", GetEnvDefault("TEST_CONFIG_KEY", "fallback"))

	t.Setenv("TEST_CONFIG_KEY", "set")
	assert.Equal(t, "set", GetEnvDefault("TEST_CONFIG_KEY", "fallback"))
}
