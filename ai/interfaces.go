package ai

import "context"

// Generator produces text from a prompt using a remote text-generation API.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends one chat completion and returns the generated text with
	// surrounding whitespace trimmed.
	// A non-success response from the remote service is returned as an error
	// whose message carries the upstream status and body unchanged.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest describes one text-generation call.
type GenerateRequest struct {
	// Model is the provider model identifier, e.g. "mistralai/mistral-7b-instruct".
	// Empty means the generator's default model.
	Model string

	// System is an optional system instruction.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens bounds the completion length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature is optional; nil leaves it to the provider.
	Temperature *float64
}

// Temperature returns a pointer suitable for GenerateRequest.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// SummaryParams selects a pretrained summarization model and its output bounds.
type SummaryParams struct {
	Model     string
	MaxLength int
	MinLength int
}

// LocalPipelines runs pretrained summarization and translation models.
// A LocalPipelines value is constructed once, loaded explicitly with Load,
// and then reused for every request.
type LocalPipelines interface {
	// Load prepares every model the pipelines serve. It is called once at
	// application start; calling it again is a no-op.
	Load(ctx context.Context) error

	// Summarize condenses one chunk of text with the given model and bounds.
	Summarize(ctx context.Context, text string, params SummaryParams) (string, error)

	// Translate translates one chunk of text with the given translation model.
	Translate(ctx context.Context, text string, model string) (string, error)
}

// Synthesizer turns text into speech.
type Synthesizer interface {
	// Synthesize renders text in the given language and returns the path of
	// a single audio file.
	Synthesize(ctx context.Context, text string, lang string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Generator returns the remote text-generation service.
	Generator() Generator

	// Pipelines returns the pretrained local pipelines.
	Pipelines() LocalPipelines

	// Synthesizer returns the speech synthesis service.
	Synthesizer() Synthesizer

	// Close releases resources held by the provider and its services.
	Close() error
}
