package llm

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config selects and configures the LLM backend behind the practice
// service. Provider is one of "ollama", "anthropic", "openai", "gemini",
// "openrouter" or "mock".
type Config struct {
	Provider string `mapstructure:"provider"`

	Ollama     OllamaConfig     `mapstructure:"ollama"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry"`

	// Timeout bounds one tutor call, retries and backoff included.
	Timeout time.Duration `mapstructure:"timeout"`
}

type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // friendly name or full model ID
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"` // vendor/model
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig shapes the exponential backoff between attempts.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig targets a local Ollama running qwen3.
func DefaultConfig() Config {
	return Config{
		Provider:   "ollama",
		Ollama:     OllamaConfig{URL: defaultOllamaURL, Model: defaultOllamaModel},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// envBindings maps config keys to the variables that set them.
var envBindings = map[string]string{
	"provider":            "CHEMTHINK_LLM_PROVIDER",
	"timeout":             "CHEMTHINK_LLM_TIMEOUT",
	"retry.max_attempts":  "CHEMTHINK_LLM_MAX_ATTEMPTS",
	"retry.initial_wait":  "CHEMTHINK_LLM_RETRY_INITIAL_WAIT",
	"retry.max_wait":      "CHEMTHINK_LLM_RETRY_MAX_WAIT",
	"retry.multiplier":    "CHEMTHINK_LLM_RETRY_MULTIPLIER",
	"ollama.url":          "CHEMTHINK_OLLAMA_URL",
	"ollama.model":        "CHEMTHINK_OLLAMA_MODEL",
	"anthropic.api_key":   "CHEMTHINK_ANTHROPIC_API_KEY",
	"anthropic.model":     "CHEMTHINK_ANTHROPIC_MODEL",
	"openai.api_key":      "CHEMTHINK_OPENAI_API_KEY",
	"openai.model":        "CHEMTHINK_OPENAI_MODEL",
	"openai.base_url":     "CHEMTHINK_OPENAI_BASE_URL",
	"gemini.api_key":      "CHEMTHINK_GEMINI_API_KEY",
	"gemini.model":        "CHEMTHINK_GEMINI_MODEL",
	"gemini.base_url":     "CHEMTHINK_GEMINI_BASE_URL",
	"openrouter.api_key":  "CHEMTHINK_OPENROUTER_API_KEY",
	"openrouter.model":    "CHEMTHINK_OPENROUTER_MODEL",
	"openrouter.base_url": "CHEMTHINK_OPENROUTER_BASE_URL",
}

// ConfigFromEnv overlays CHEMTHINK_* variables on DefaultConfig. Empty
// variables leave the default in place.
func ConfigFromEnv() (Config, error) {
	def := DefaultConfig()
	v := viper.New()
	for key, val := range map[string]any{
		"provider":            def.Provider,
		"timeout":             def.Timeout,
		"retry.max_attempts":  def.Retry.MaxAttempts,
		"retry.initial_wait":  def.Retry.InitialWait,
		"retry.max_wait":      def.Retry.MaxWait,
		"retry.multiplier":    def.Retry.Multiplier,
		"ollama.url":          def.Ollama.URL,
		"ollama.model":        def.Ollama.Model,
		"anthropic.api_key":   def.Anthropic.APIKey,
		"anthropic.model":     def.Anthropic.Model,
		"openai.api_key":      def.OpenAI.APIKey,
		"openai.model":        def.OpenAI.Model,
		"openai.base_url":     def.OpenAI.BaseURL,
		"gemini.api_key":      def.Gemini.APIKey,
		"gemini.model":        def.Gemini.Model,
		"gemini.base_url":     def.Gemini.BaseURL,
		"openrouter.api_key":  def.OpenRouter.APIKey,
		"openrouter.model":    def.OpenRouter.Model,
		"openrouter.base_url": def.OpenRouter.BaseURL,
	} {
		v.SetDefault(key, val)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := def
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode LLM config: %w", err)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("CHEMTHINK_LLM_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// hostedKeys lists the vendors' own key variables in discovery order.
var hostedKeys = []struct {
	env      string
	provider string
	set      func(*Config, string)
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config, k string) { c.Gemini.APIKey = k }},
	{"OPENAI_API_KEY", "openai", func(c *Config, k string) { c.OpenAI.APIKey = k }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, k string) { c.Anthropic.APIKey = k }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, k string) { c.OpenRouter.APIKey = k }},
}

// DiscoverConfig picks the first hosted provider whose vendor key variable
// is set (Gemini, OpenAI, Anthropic, then OpenRouter).
func DiscoverConfig() (Config, bool) {
	for _, h := range hostedKeys {
		if k := os.Getenv(h.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = h.provider
			h.set(&cfg, k)
			return cfg, true
		}
	}
	return Config{}, false
}

// ResolveConfig returns ConfigFromEnv when CHEMTHINK_LLM_PROVIDER is set.
// Otherwise a hosted provider found by DiscoverConfig wins over the local
// Ollama default.
func ResolveConfig() (Config, error) {
	if os.Getenv("CHEMTHINK_LLM_PROVIDER") == "" {
		if cfg, ok := DiscoverConfig(); ok {
			return cfg, nil
		}
	}
	return ConfigFromEnv()
}

// Validate checks that the selected provider can be reached: hosted ones
// need a key, Ollama needs a URL.
func (c Config) Validate() error {
	var missing string
	switch c.Provider {
	case "ollama":
		if c.Ollama.URL == "" {
			missing = "CHEMTHINK_OLLAMA_URL"
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			missing = "CHEMTHINK_ANTHROPIC_API_KEY"
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			missing = "CHEMTHINK_OPENAI_API_KEY"
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			missing = "CHEMTHINK_GEMINI_API_KEY"
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			missing = "CHEMTHINK_OPENROUTER_API_KEY"
		}
	case "mock":
	case "":
		return errors.New("no LLM provider selected")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if missing != "" {
		return fmt.Errorf("%s is required for the %s provider", missing, c.Provider)
	}
	return nil
}
