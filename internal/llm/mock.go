package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a scripted reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockCall is a request the MockProvider received, with the purpose it
// was made for.
type MockCall struct {
	Request
	Purpose Purpose
}

// MockProvider replies from scripts. Replies queued for a purpose with
// Respond are used first; otherwise the shared queue is consumed in
// order. With nothing queued it behaves like an unreachable provider,
// which is what "mock" selects outside of tests.
type MockProvider struct {
	mu        sync.Mutex
	queue     []MockResponse
	byPurpose map[Purpose][]MockResponse
	Calls     []MockCall
}

// NewMockProvider returns a MockProvider with responses in its shared queue.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses, byPurpose: make(map[Purpose][]MockResponse)}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Request: req, Purpose: purpose})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var next MockResponse
	switch {
	case len(m.byPurpose[purpose]) > 0:
		next = m.byPurpose[purpose][0]
		m.byPurpose[purpose] = m.byPurpose[purpose][1:]
	case len(m.queue) > 0:
		next = m.queue[0]
		m.queue = m.queue[1:]
	default:
		return nil, &ErrProviderUnavailable{Provider: "mock"}
	}
	if next.Err != nil {
		return nil, next.Err
	}

	stop := StopEnd
	if req.MaxTokens > 0 && next.Usage.OutputTokens >= req.MaxTokens {
		stop = StopMaxTokens
	}
	return finish(req, next.Content, next.Usage, "mock", stop)
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Name() string { return "mock" }

// AddResponse appends to the shared queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// Respond queues a reply used only for calls made with purpose.
func (m *MockProvider) Respond(purpose Purpose, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPurpose[purpose] = append(m.byPurpose[purpose], resp)
}

// CallCount returns the number of Generate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
