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

package openai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using an OpenAI-compatible chat API.
type Generator struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// newGenerator is an internal constructor that returns the concrete type.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	}
	if config.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		model:  config.Model,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate sends a single chat completion request.
// Errors from the remote service are returned unchanged so their status
// code and body reach the caller.
func (g *Generator) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	model := req.Model
	if model == "" {
		model = g.model
	}
	callOpts := []llms.CallOption{llms.WithModel(model)}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*req.Temperature))
	}

	response, err := g.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		g.logger.Error("chat completion failed", "model", model, "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		g.logger.Debug("no choices returned from model", "model", model)
		return "", core.ErrEmptyResponse
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
