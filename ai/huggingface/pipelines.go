// Package huggingface implements ai.LocalPipelines against a Hugging Face
// style inference endpoint (the hosted Inference API or a self-hosted
// text-generation-inference server exposing the same routes).
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
)

// ErrInference is returned when the inference endpoint answers with a non-success status.
var ErrInference = errors.New("inference request failed")

// Pipelines implements ai.LocalPipelines.
type Pipelines struct {
	client *resty.Client
	models []string
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
}

var _ ai.LocalPipelines = (*Pipelines)(nil)

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type summaryParameters struct {
	MaxLength int  `json:"max_length,omitempty"`
	MinLength int  `json:"min_length,omitempty"`
	DoSample  bool `json:"do_sample"`
}

type inferenceRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters *summaryParameters `json:"parameters,omitempty"`
	Options    inferenceOptions   `json:"options"`
}

type summaryOutput struct {
	SummaryText string `json:"summary_text"`
}

type translationOutput struct {
	TranslationText string `json:"translation_text"`
}

func newPipelines(config *ai.Config) (*Pipelines, error) {
	config.Normalize()
	if config.PipelinesHost == "" {
		return nil, errors.New("huggingface: PipelinesHost is required")
	}

	client := resty.New().
		SetBaseURL(config.PipelinesHost).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if config.PipelinesToken != "" {
		client.SetAuthToken(config.PipelinesToken)
	}
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	return &Pipelines{
		client: client,
		models: []string{
			ai.SummaryModelEN,
			ai.SummaryModelAR,
			ai.TranslationModelENAR,
			ai.TranslationModelAREN,
		},
		logger: slog.Default().With("component", "huggingface-pipelines"),
	}, nil
}

// NewPipelines creates the pretrained pipelines client. Call Load once
// before serving requests to make sure every model is warm.
//
// Returns ai.LocalPipelines interface to enforce abstraction.
func NewPipelines(config *ai.Config) (ai.LocalPipelines, error) {
	return newPipelines(config)
}

// Load asks the endpoint to load each model, blocking until it is ready.
// After one successful Load, further calls return immediately.
func (p *Pipelines) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil
	}
	for _, model := range p.models {
		p.logger.Info("loading model", "model", model)
		if _, err := p.infer(ctx, model, inferenceRequest{Inputs: "warm up"}); err != nil {
			return fmt.Errorf("load %s: %w", model, err)
		}
	}
	p.loaded = true
	return nil
}

// Summarize runs a summarization model over one chunk.
func (p *Pipelines) Summarize(ctx context.Context, text string, params ai.SummaryParams) (string, error) {
	var out []summaryOutput
	resp, err := p.infer(ctx, params.Model, inferenceRequest{
		Inputs: text,
		Parameters: &summaryParameters{
			MaxLength: params.MaxLength,
			MinLength: params.MinLength,
		},
	})
	if err != nil {
		return "", err
	}
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", core.ErrEmptyResponse
	}
	return out[0].SummaryText, nil
}

// Translate runs a translation model over one chunk.
func (p *Pipelines) Translate(ctx context.Context, text string, model string) (string, error) {
	var out []translationOutput
	resp, err := p.infer(ctx, model, inferenceRequest{Inputs: text})
	if err != nil {
		return "", err
	}
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", core.ErrEmptyResponse
	}
	return out[0].TranslationText, nil
}

func (p *Pipelines) infer(ctx context.Context, model string, body inferenceRequest) (*resty.Response, error) {
	body.Options.WaitForModel = true

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/models/" + model)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrInference, resp.StatusCode(), resp.String())
	}

	p.logger.Debug("inference completed", "model", model, "status", resp.StatusCode())
	return resp, nil
}
