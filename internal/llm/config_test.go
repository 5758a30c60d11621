package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("EXAMLY_LLM_PROVIDER", "")
	t.Setenv("EXAMLY_ANTHROPIC_API_KEY", "sk-ant")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.APIKey)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Model)
	assert.Equal(t, 3*time.Minute, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_SelectedProvider(t *testing.T) {
	t.Setenv("EXAMLY_LLM_PROVIDER", "OpenRouter")
	t.Setenv("EXAMLY_OPENROUTER_API_KEY", "or-key")
	t.Setenv("EXAMLY_OPENROUTER_MODEL", "meta/llama")
	t.Setenv("EXAMLY_OPENROUTER_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("EXAMLY_ANTHROPIC_API_KEY", "ignored")
	t.Setenv("EXAMLY_LLM_TIMEOUT", "45s")
	t.Setenv("EXAMLY_LLM_RETRIES", "5")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, "or-key", cfg.APIKey)
	assert.Equal(t, "meta/llama", cfg.Model)
	assert.Equal(t, "http://localhost:9999/v1", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestConfigValidate(t *testing.T) {
	ok := DefaultConfig(ProviderGemini)
	ok.APIKey = "g"
	assert.NoError(t, ok.Validate())

	noKey := DefaultConfig(ProviderOpenAI)
	err := noKey.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXAMLY_OPENAI_API_KEY")

	assert.Error(t, DefaultConfig("mock").Validate())

	noRetry := ok
	noRetry.Retry.MaxAttempts = 0
	assert.Error(t, noRetry.Validate())
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	_, found := DiscoverConfig()
	assert.False(t, found)

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "o")
	cfg, found := DiscoverConfig()
	require.True(t, found)
	assert.Equal(t, ProviderOpenAI, cfg.Provider, "openai is probed before anthropic")
	assert.Equal(t, "o", cfg.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-5-20250929", ResolveModel(ProviderAnthropic, "claude-sonnet"))
	assert.Equal(t, "gemini-2.5-pro", ResolveModel(ProviderGemini, "gemini-pro"))
	assert.Equal(t, "google/gemini-2.5-flash", ResolveModel(ProviderOpenRouter, "gemini-flash"))
	assert.Equal(t, "gpt-4.1-mini", ResolveModel(ProviderOpenAI, ""))
	// Aliases are per provider; unknown names pass through.
	assert.Equal(t, "claude-sonnet", ResolveModel(ProviderOpenAI, "claude-sonnet"))
	assert.Equal(t, "o3", ResolveModel(ProviderOpenAI, "o3"))
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4.1-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.4+1.6, c.Cost(1_000_000, 1_000_000), 1e-9)

	// Dated snapshot resolves to the longest matching base model.
	c = LookupCost("gpt-4.1-mini-2025-04-14")
	require.NotNil(t, c)
	assert.Equal(t, 0.4, c.InputPerMTok)
	c = LookupCost("gpt-4.1-2025-04-14")
	require.NotNil(t, c)
	assert.Equal(t, 2.0, c.InputPerMTok)

	assert.Nil(t, LookupCost("stub"))
}

func TestEveryProviderHasDefault(t *testing.T) {
	for p := range envNames {
		assert.NotEmpty(t, DefaultModel(p), p)
	}
}
