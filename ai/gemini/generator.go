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

// Package gemini implements ai.Generator over the Gemini API.
package gemini

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"google.golang.org/genai"
)

// Generator implements ai.Generator using the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

func newGenerator(ctx context.Context, config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		model:  config.GeminiModel,
		logger: slog.Default().With("component", "gemini-generator"),
	}, nil
}

// NewGenerator creates a Gemini-backed generator.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(ctx context.Context, config *ai.Config) (ai.Generator, error) {
	return newGenerator(ctx, config)
}

// Generate sends one GenerateContent call and concatenates the text parts of
// the first candidate.
func (g *Generator) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	model := resolveModel(req.Model, g.model)

	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), buildConfig(req))
	if err != nil {
		g.logger.Error("generate content failed", "model", model, "err", err)
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", core.ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}

// resolveModel keeps explicit Gemini model names and maps every other
// identifier (the OpenRouter-style names offered in the UI) to the default.
func resolveModel(requested, fallback string) string {
	if strings.HasPrefix(requested, "gemini") {
		return requested
	}
	if strings.HasPrefix(requested, "google/gemini") {
		return strings.TrimPrefix(requested, "google/")
	}
	return fallback
}

func buildConfig(req ai.GenerateRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	return config
}
