package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/natiq/ai"
)

// MockPipelines is a test double for ai.LocalPipelines.
type MockPipelines struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, Summarize returns the first five words of the text.
	SummarizeFunc func(ctx context.Context, text string, params ai.SummaryParams) (string, error)

	// TranslateFunc is called by Translate if set.
	// If nil, Translate returns "[model] text".
	TranslateFunc func(ctx context.Context, text string, model string) (string, error)

	// LoadErr is returned by Load when set.
	LoadErr error

	mu         sync.Mutex
	loadCount  int
	summarized []ai.SummaryParams
	translated []string
}

// NewMockPipelines creates mock pipelines with default behavior.
func NewMockPipelines() *MockPipelines {
	return &MockPipelines{}
}

// Load counts calls and returns LoadErr.
func (m *MockPipelines) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCount++
	return m.LoadErr
}

// Summarize records the parameters and returns the configured summary.
func (m *MockPipelines) Summarize(ctx context.Context, text string, params ai.SummaryParams) (string, error) {
	m.mu.Lock()
	m.summarized = append(m.summarized, params)
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text, params)
	}
	words := strings.Fields(text)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " "), nil
}

// Translate records the model and returns the configured translation.
func (m *MockPipelines) Translate(ctx context.Context, text string, model string) (string, error) {
	m.mu.Lock()
	m.translated = append(m.translated, model)
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, model)
	}
	return "[" + model + "] " + text, nil
}

// LoadCount returns how many times Load was called.
func (m *MockPipelines) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCount
}

// SummaryCalls returns the parameters of every Summarize call.
func (m *MockPipelines) SummaryCalls() []ai.SummaryParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.SummaryParams(nil), m.summarized...)
}

// TranslationModels returns the model of every Translate call.
func (m *MockPipelines) TranslationModels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.translated...)
}
