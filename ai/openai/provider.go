package openai

import (
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/ai/huggingface"
	"github.com/poiesic/natiq/ai/tts"
)

// NewProvider creates a provider that generates text through an
// OpenAI-compatible API and uses the configured pipeline and speech hosts.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	generator, err := NewGenerator(config)
	if err != nil {
		return nil, err
	}
	pipelines, err := huggingface.NewPipelines(config)
	if err != nil {
		return nil, err
	}
	synthesizer, err := tts.NewSynthesizer(config)
	if err != nil {
		return nil, err
	}
	return ai.NewProvider(generator, pipelines, synthesizer), nil
}
