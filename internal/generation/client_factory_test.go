package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iconograph/internal/config"
)

func TestNewClientFromConfigGemini(t *testing.T) {
	client, err := NewClientFromConfig(context.Background(), config.LLMConfig{
		Provider: "gemini",
		APIKey:   "test-key",
		Model:    "gemini-2.0-flash",
	}, 30*time.Second)
	require.NoError(t, err)

	gc, ok := client.(*GeminiClient)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", gc.GetModel())
}

func TestNewClientFromConfigDefaultProvider(t *testing.T) {
	client, err := NewClientFromConfig(context.Background(), config.LLMConfig{
		APIKey: "test-key",
	}, 0)
	require.NoError(t, err)
	_, ok := client.(*GeminiClient)
	assert.True(t, ok, "empty provider should default to the HTTP Gemini client")
}

func TestNewClientFromConfigUnknownProvider(t *testing.T) {
	_, err := NewClientFromConfig(context.Background(), config.LLMConfig{
		Provider: "openai",
		APIKey:   "test-key",
	}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewClientFromConfigMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewClientFromConfig(context.Background(), config.LLMConfig{Provider: "gemini"}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewClientFromConfigEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	client, err := NewClientFromConfig(context.Background(), config.LLMConfig{Provider: "gemini"}, 0)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
