package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "qwen3:latest"
)

// OllamaProvider talks to a local Ollama server through its
// OpenAI-compatible endpoint. Structured output falls back to JSON mode with
// the schema embedded in the system prompt.
type OllamaProvider struct {
	*OpenAIProvider
	baseURL string
}

// NewOllamaProvider creates a provider for the Ollama server at cfg.URL.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	base := strings.TrimRight(cfg.URL, "/")
	if base == "" {
		base = defaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	// Ollama ignores the key but the SDK requires one.
	inner := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  "ollama",
		Model:   model,
		BaseURL: base + "/v1",
	})
	inner.jsonMode = true
	inner.backend = "ollama"

	return &OllamaProvider{OpenAIProvider: inner, baseURL: base}
}

// Ping reports whether the Ollama server answers on its version endpoint.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &ErrProviderUnavailable{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ErrProviderUnavailable{Provider: "ollama", Status: resp.StatusCode, Err: fmt.Errorf("%s returned %s", p.baseURL, resp.Status)}
	}
	return nil
}
