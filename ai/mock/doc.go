// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Generator,
// ai.LocalPipelines, ai.Synthesizer and ai.AIProvider for use in unit tests.
// The mocks let pipelines run without network access and with
// deterministic output.
//
// # Usage in Tests
//
//	// Scripted responses, one per chunk
//	gen := mock.NewMockGenerator().WithResponses(
//	    `[{"speaker": "Speaker 1", "text": "hi"}]`,
//	    "not json",
//	)
//
//	// Custom behavior injection
//	gen.WithGenerateFunc(func(ctx context.Context, req ai.GenerateRequest) (string, error) {
//	    return "", errors.New("API Error 500: boom")
//	})
//
//	// Inspect what was sent
//	reqs := gen.Requests()
//
// # Default Behavior
//
//   - MockGenerator: echoes the prompt
//   - MockPipelines: first five words as summary, "[model] text" as translation
//   - MockSynthesizer: writes the text into a temporary .mp3 file
package mock
