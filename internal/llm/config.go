// Package llm provides text generation clients and their model configuration.
// Callers pick a tier by how much text they expect back; each provider maps
// tiers to a model and an output token cap.
package llm

import (
	"fmt"
	"time"
)

// ModelTier represents how much output a task needs
type ModelTier string

const (
	// TierLite is for one-line answers such as a fit note
	TierLite ModelTier = "lite"
	// TierStandard is for short texts such as an email pitch
	TierStandard ModelTier = "standard"
	// TierAdvanced is for letters and structured lookups
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderAnthropic is the Anthropic Messages API
	ProviderAnthropic Provider = "anthropic"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 30 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	MaxTokens   map[ModelTier]int
	Temperature float32
	Timeout     time.Duration
}

func defaultMaxTokens() map[ModelTier]int {
	return map[ModelTier]int{
		TierLite:     100,
		TierStandard: 250,
		TierAdvanced: 500,
	}
}

// DefaultConfig returns the default configuration (Anthropic)
func DefaultConfig() *Config {
	return DefaultAnthropicConfig()
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	const model = "claude-sonnet-4-20250514"
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     model,
			TierStandard: model,
			TierAdvanced: model,
		},
		MaxTokens:   defaultMaxTokens(),
		Temperature: 0.7,
		Timeout:     DefaultTimeout,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxTokens:   defaultMaxTokens(),
		Temperature: 0.7,
		Timeout:     DefaultTimeout,
	}
}

// ConfigFor returns the default configuration for a provider name.
func ConfigFor(provider string) (*Config, error) {
	switch Provider(provider) {
	case ProviderAnthropic, "":
		return DefaultAnthropicConfig(), nil
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", provider)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// GetMaxTokens returns the output cap for a tier, 500 when none is set.
func (c *Config) GetMaxTokens(tier ModelTier) int {
	if n, ok := c.MaxTokens[tier]; ok && n > 0 {
		return n
	}
	return 500
}

// GetTimeout returns the request timeout, DefaultTimeout when unset.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string),
		MaxTokens:   make(map[ModelTier]int),
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.MaxTokens {
		newConfig.MaxTokens[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
