package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 1, cfg.Browser.ResultIndex)
	assert.Equal(t, 10, cfg.Stats.RecentLimit)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9000"
llm:
  provider: genai
  model: gemini-2.5-pro
  timeout: 90s
browser:
  result_index: 0
  min_image_width: 200
  min_image_height: 150
stats:
  recent_limit: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "genai", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 0, cfg.Browser.ResultIndex)
	assert.Equal(t, 200, cfg.Browser.MinImageWidth)
	assert.Equal(t, 5, cfg.Stats.RecentLimit)

	assert.Equal(t, 90*time.Second, cfg.LLMTimeout())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ICONOGRAPH_API_KEY", "test-key")
	t.Setenv("ICONOGRAPH_ADDR", ":7777")
	t.Setenv("ICONOGRAPH_LLM_PROVIDER", "genai")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "genai", cfg.LLM.Provider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }},
		{"zero recent limit", func(c *Config) { c.Stats.RecentLimit = 0 }},
		{"negative result index", func(c *Config) { c.Browser.ResultIndex = -1 }},
		{"bad duration", func(c *Config) { c.LLM.Timeout = "soon" }},
		{"negative duration", func(c *Config) { c.Stats.ReportInterval = "-1h" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
