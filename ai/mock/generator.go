package mock

import (
	"context"
	"sync"

	"github.com/poiesic/natiq/ai"
)

// MockGenerator is a test double for ai.Generator.
// It records every request and allows custom behavior via GenerateFunc.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate echoes the prompt back.
	GenerateFunc func(ctx context.Context, req ai.GenerateRequest) (string, error)

	mu       sync.Mutex
	requests []ai.GenerateRequest
}

// NewMockGenerator creates a mock generator with default echo behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// WithGenerateFunc sets GenerateFunc and returns the mock for chaining.
func (m *MockGenerator) WithGenerateFunc(fn func(ctx context.Context, req ai.GenerateRequest) (string, error)) *MockGenerator {
	m.GenerateFunc = fn
	return m
}

// WithResponses makes the mock return the given responses in order, then
// repeat the last one.
func (m *MockGenerator) WithResponses(responses ...string) *MockGenerator {
	var (
		mu   sync.Mutex
		next int
	)
	m.GenerateFunc = func(ctx context.Context, req ai.GenerateRequest) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(responses) == 0 {
			return "", nil
		}
		out := responses[min(next, len(responses)-1)]
		next++
		return out, nil
	}
	return m
}

// Generate records the request and returns the configured response.
func (m *MockGenerator) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return req.Prompt, nil
}

// CallCount returns how many times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every recorded request in call order.
func (m *MockGenerator) Requests() []ai.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.GenerateRequest(nil), m.requests...)
}

// Reset clears recorded requests.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}
