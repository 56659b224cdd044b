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

// Package openai implements ai.Generator over OpenAI-compatible chat APIs.
//
// The generator uses the langchaingo OpenAI client, so any service speaking
// the chat completions protocol works: OpenRouter (the default), OpenAI
// itself, or a local Ollama/vLLM server.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithAPIKey(os.Getenv("OPENROUTER_API_KEY")),
//	)
//	gen, err := openai.NewGenerator(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := gen.Generate(ctx, ai.GenerateRequest{
//	    Model:       "openai/gpt-4o-mini",
//	    Prompt:      "Summarize this: ...",
//	    MaxTokens:   500,
//	    Temperature: ai.Temperature(0.2),
//	})
package openai
