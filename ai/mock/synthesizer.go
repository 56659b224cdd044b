package mock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// MockSynthesizer is a test double for ai.Synthesizer. By default it writes
// the text itself into a file under Dir.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	SynthesizeFunc func(ctx context.Context, text, lang string) (string, error)

	// Dir receives default output files. Defaults to os.TempDir().
	Dir string

	mu    sync.Mutex
	texts []string
	langs []string
}

// NewMockSynthesizer creates a mock synthesizer writing into dir.
func NewMockSynthesizer(dir string) *MockSynthesizer {
	return &MockSynthesizer{Dir: dir}
}

// Synthesize records the call and produces a file.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, lang string) (string, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.langs = append(m.langs, lang)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, lang)
	}
	dir := m.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "speech-*.mp3")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return "", err
	}
	return filepath.Clean(f.Name()), nil
}

// Texts returns every synthesized text in call order.
func (m *MockSynthesizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Langs returns every requested language in call order.
func (m *MockSynthesizer) Langs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.langs...)
}
