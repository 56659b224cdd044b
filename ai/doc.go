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

// Package ai provides abstractions for the AI services Natiq delegates to.
//
// Nothing in Natiq generates, translates or transcribes text by itself. The
// interfaces in this package describe the black boxes every feature pipeline
// calls, so pipelines depend on abstractions rather than on HTTP clients.
//
// # Interfaces
//
//   - Generator: remote text generation (chat completions)
//   - LocalPipelines: pretrained summarization and translation models
//   - Synthesizer: text-to-speech rendering into an audio file
//   - AIProvider: aggregates the three for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/openai: Generator over OpenAI-compatible APIs (OpenRouter by default)
//   - ai/gemini: Generator over the Gemini API
//   - ai/huggingface: LocalPipelines over an inference endpoint
//   - ai/tts: Synthesizer over the Google Translate speech endpoint
//   - ai/mock: test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewGenerator, huggingface.NewPipelines, ...)
// return INTERFACE types. Mock constructors return CONCRETE types so tests
// can inject behavior and assert call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("OPENROUTER_API_KEY")))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	text, err := provider.Generator().Generate(ctx, ai.GenerateRequest{
//	    Prompt:    "Say hello",
//	    MaxTokens: 50,
//	})
package ai
