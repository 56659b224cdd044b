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

package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Backend selects the remote text-generation service.
	// Default: BackendOpenRouter
	Backend Backend

	// Host is the base URL of the OpenAI-compatible chat completions API.
	// Example: "https://openrouter.ai/api/v1"
	Host string

	// APIKey authenticates against Host.
	APIKey string

	// Model is the default model identifier for generation.
	// Example: "mistralai/mistral-7b-instruct"
	Model string

	// GeminiAPIKey authenticates against the Gemini API when Backend is BackendGemini.
	GeminiAPIKey string

	// GeminiModel is the Gemini model used when requests name an OpenRouter-style model.
	// Example: "gemini-2.0-flash"
	GeminiModel string

	// PipelinesHost is the base URL of the inference service hosting the
	// pretrained summarization and translation models.
	// Example: "https://api-inference.huggingface.co"
	PipelinesHost string

	// PipelinesToken authenticates against PipelinesHost. Optional for self-hosted services.
	PipelinesToken string

	// SpeechHost is the base URL of the speech synthesis endpoint.
	// Example: "https://translate.google.com"
	SpeechHost string

	// WorkDir receives generated audio files.
	WorkDir string

	// Timeout bounds each outbound call. Zero means no timeout.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend selects the text-generation backend.
func WithBackend(backend Backend) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithHost sets the chat completions base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the chat completions API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithModel sets the default generation model.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithGemini configures the Gemini backend credentials and model.
func WithGemini(apiKey, model string) ConfigOption {
	return func(c *Config) {
		c.GeminiAPIKey = apiKey
		if model != "" {
			c.GeminiModel = model
		}
	}
}

// WithPipelines sets the pretrained pipeline inference host and token.
func WithPipelines(host, token string) ConfigOption {
	return func(c *Config) {
		c.PipelinesHost = host
		c.PipelinesToken = token
	}
}

// WithSpeechHost sets the speech synthesis base URL.
func WithSpeechHost(host string) ConfigOption {
	return func(c *Config) {
		c.SpeechHost = host
	}
}

// WithWorkDir sets the directory for generated audio.
func WithWorkDir(dir string) ConfigOption {
	return func(c *Config) {
		c.WorkDir = dir
	}
}

// WithTimeout bounds each outbound call.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config pointing at OpenRouter, the Hugging Face
// inference API and the Google Translate speech endpoint.
func DefaultConfig() *Config {
	return &Config{
		Backend:       BackendOpenRouter,
		Host:          "https://openrouter.ai/api/v1",
		Model:         DefaultModel,
		GeminiModel:   "gemini-2.0-flash",
		PipelinesHost: "https://api-inference.huggingface.co",
		SpeechHost:    "https://translate.google.com",
		WorkDir:       "temp",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("OPENROUTER_API_KEY")),
//	    WithModel("openai/gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// The chat host gets a /v1 suffix, which every OpenAI-compatible API
// (OpenRouter, Ollama, vLLM) expects; other hosts lose trailing slashes.
func (c *Config) Normalize() {
	if c.Backend == "" {
		c.Backend = BackendOpenRouter
	}
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	c.PipelinesHost = strings.TrimSuffix(c.PipelinesHost, "/")
	c.SpeechHost = strings.TrimSuffix(c.SpeechHost, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendOpenRouter:
		if c.Host == "" {
			return errors.New("ai config: Host is required")
		}
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required (set OPENROUTER_API_KEY)")
		}
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("ai config: GeminiAPIKey is required (set GEMINI_API_KEY)")
		}
		if c.GeminiModel == "" {
			return errors.New("ai config: GeminiModel is required")
		}
	default:
		return errors.New("ai config: Backend must be openrouter or gemini")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.PipelinesHost == "" {
		return errors.New("ai config: PipelinesHost is required")
	}
	if c.SpeechHost == "" {
		return errors.New("ai config: SpeechHost is required")
	}
	if c.WorkDir == "" {
		return errors.New("ai config: WorkDir is required")
	}
	if c.Timeout < 0 {
		return errors.New("ai config: Timeout cannot be negative")
	}
	return nil
}
