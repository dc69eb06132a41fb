package llm

import (
	"context"
	"encoding/json"
)

// Provider produces one structured reply per call.
type Provider interface {
	// Generate sends req and returns the reply. When req.Schema is set the
	// reply Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model the provider sends requests to.
	ModelID() string
}

// Request is a single-turn call: a system prompt and one user prompt.
// Problem generation, similar-problem generation and grading all fit
// this shape, so no conversation history is carried.
type Request struct {
	System string
	Prompt string

	// Schema, when set, asks the provider for JSON matching it. When nil
	// Content is the raw reply text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero means the provider's deterministic
	// setting; grading always sends zero.
	Temperature float64
}

// Schema names a JSON Schema the reply must satisfy, e.g. "chem-problem".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a provider reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// StopReason is why the model stopped, normalized across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// finish turns raw provider output into a Response. A reply that fails
// schema validation after hitting the token limit is reported as
// ErrMaxTokensExceeded so it is not retried with the same limit.
func finish(req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			if stop == StopMaxTokens {
				return nil, &ErrMaxTokensExceeded{Limit: req.MaxTokens, Content: content}
			}
			return nil, err
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

// named is implemented by providers that report which backend they use.
type named interface {
	Name() string
}

// ProviderName returns the backend name of p, looking through decorators.
func ProviderName(p Provider) string {
	for p != nil {
		if n, ok := p.(named); ok {
			return n.Name()
		}
		u, ok := p.(interface{ Unwrap() Provider })
		if !ok {
			break
		}
		p = u.Unwrap()
	}
	return "unknown"
}
