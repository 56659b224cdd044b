// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import "github.com/poiesic/natiq/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock generator, pipelines and synthesizer instances.
type MockProvider struct {
	generator   *MockGenerator
	pipelines   *MockPipelines
	synthesizer *MockSynthesizer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockGenerator() and friends to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		generator:   NewMockGenerator(),
		pipelines:   NewMockPipelines(),
		synthesizer: NewMockSynthesizer(""),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(generator *MockGenerator, pipelines *MockPipelines, synthesizer *MockSynthesizer) ai.AIProvider {
	return &MockProvider{
		generator:   generator,
		pipelines:   pipelines,
		synthesizer: synthesizer,
	}
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	if p.generator == nil {
		return nil
	}
	return p.generator
}

// Pipelines returns the mock pipelines.
func (p *MockProvider) Pipelines() ai.LocalPipelines {
	if p.pipelines == nil {
		return nil
	}
	return p.pipelines
}

// Synthesizer returns the mock synthesizer.
func (p *MockProvider) Synthesizer() ai.Synthesizer {
	if p.synthesizer == nil {
		return nil
	}
	return p.synthesizer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockPipelines returns the underlying mock pipelines for test assertions.
func (p *MockProvider) GetMockPipelines() *MockPipelines {
	return p.pipelines
}

// GetMockSynthesizer returns the underlying mock synthesizer for test assertions.
func (p *MockProvider) GetMockSynthesizer() *MockSynthesizer {
	return p.synthesizer
}
