package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// envNames maps a provider to the name used in its environment variables.
var envNames = map[string]string{
	ProviderAnthropic:  "ANTHROPIC",
	ProviderOpenAI:     "OPENAI",
	ProviderGemini:     "GEMINI",
	ProviderOpenRouter: "OPENROUTER",
}

// discoveryOrder is the order DiscoverConfig probes standard key variables.
var discoveryOrder = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter}

// Config selects and configures the provider used for bank generation.
type Config struct {
	Provider string
	APIKey   string
	// Model is a model ID or an alias from Models. Empty selects the
	// provider default.
	Model   string
	BaseURL string
	Retry   RetryConfig
	// Timeout bounds one generation including retries.
	Timeout time.Duration
}

// RetryConfig is the backoff policy for retryable errors.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the settings for provider with its default model.
func DefaultConfig(provider string) Config {
	return Config{
		Provider: provider,
		Model:    DefaultModel(provider),
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     15 * time.Second,
			Multiplier:  2,
		},
		// Batches of questions are long outputs.
		Timeout: 3 * time.Minute,
	}
}

// ConfigFromEnv reads EXAMLY_LLM_PROVIDER (default anthropic) and that
// provider's EXAMLY_<PROVIDER>_API_KEY, _MODEL and _BASE_URL, plus
// EXAMLY_LLM_TIMEOUT and EXAMLY_LLM_RETRIES.
func ConfigFromEnv() Config {
	provider := strings.ToLower(os.Getenv("EXAMLY_LLM_PROVIDER"))
	if provider == "" {
		provider = ProviderAnthropic
	}
	cfg := DefaultConfig(provider)

	if name, ok := envNames[provider]; ok {
		cfg.APIKey = os.Getenv("EXAMLY_" + name + "_API_KEY")
		if v := os.Getenv("EXAMLY_" + name + "_MODEL"); v != "" {
			cfg.Model = v
		}
		cfg.BaseURL = os.Getenv("EXAMLY_" + name + "_BASE_URL")
	}
	if d, err := time.ParseDuration(os.Getenv("EXAMLY_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("EXAMLY_LLM_RETRIES")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// DiscoverConfig picks the first provider whose standard key variable
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY)
// is set.
func DiscoverConfig() (Config, bool) {
	for _, p := range discoveryOrder {
		if key := os.Getenv(envNames[p] + "_API_KEY"); key != "" {
			cfg := DefaultConfig(p)
			cfg.APIKey = key
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the provider is known and has a key.
func (c Config) Validate() error {
	name, ok := envNames[c.Provider]
	if !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("EXAMLY_%s_API_KEY is required for the %s provider", name, c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1")
	}
	return nil
}
