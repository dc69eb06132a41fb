package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/store"
)

// NewProvider builds the configured provider. Calls pass through retry
// first and then logging, so each attempt gets its own event row. The
// mock provider is returned bare.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *zap.Logger) (Provider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return WithRetry(WithLogging(base, eventRepo, log), cfg.Retry, cfg.Timeout, log), nil
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "ollama":
		return NewOllamaProvider(cfg.Ollama), nil
	case "anthropic":
		p, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		p, err = NewOpenRouterProvider(cfg.OpenRouter)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

// Pinger is implemented by providers with a cheap reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping unwraps decorators until it finds a Pinger. A provider that cannot
// be pinged counts as reachable.
func Ping(ctx context.Context, p Provider) error {
	if p == nil {
		return errors.New("no LLM provider configured")
	}
	for {
		if pinger, ok := p.(Pinger); ok {
			return pinger.Ping(ctx)
		}
		u, ok := p.(interface{ Unwrap() Provider })
		if !ok {
			return nil
		}
		p = u.Unwrap()
	}
}
