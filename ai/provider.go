package ai

import "log/slog"

// provider is the default AIProvider: it bundles independently constructed
// services behind one lifecycle.
type provider struct {
	generator   Generator
	pipelines   LocalPipelines
	synthesizer Synthesizer
	logger      *slog.Logger
}

// NewProvider aggregates the given services.
//
// Returns AIProvider interface so callers never depend on the bundle type.
func NewProvider(generator Generator, pipelines LocalPipelines, synthesizer Synthesizer) AIProvider {
	return &provider{
		generator:   generator,
		pipelines:   pipelines,
		synthesizer: synthesizer,
		logger:      slog.Default().With("component", "ai-provider"),
	}
}

func (p *provider) Generator() Generator {
	return p.generator
}

func (p *provider) Pipelines() LocalPipelines {
	return p.pipelines
}

func (p *provider) Synthesizer() Synthesizer {
	return p.synthesizer
}

// Close is a no-op today; the HTTP-based services hold no resources that
// need explicit release.
func (p *provider) Close() error {
	p.logger.Debug("closing AI provider")
	return nil
}
