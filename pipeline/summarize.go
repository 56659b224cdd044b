package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
)

// Mode selects between the remote LLM and the pretrained local pipelines.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeLLM     Mode = "llm"
)

// ParseMode maps a mode name to a Mode. Empty selects ModeLLM.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeLLM:
		return ModeLLM, nil
	case ModeClassic:
		return ModeClassic, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidMode, name)
}

const (
	summaryMaxLength = 800
	summaryMaxTokens = 500
)

// SummarizeRequest asks for a bullet summary of a text or transcript.
// Language selects the classic model and names the language in the LLM prompt.
type SummarizeRequest struct {
	Source   Source
	Language string
	Mode     Mode
	Model    string
}

// SummarizeResult holds the transcript and its summary.
type SummarizeResult struct {
	Transcript string
	Summary    string
	Share      string
}

// Summarize condenses the source into "- " bullets, one per chunk.
func (s *Service) Summarize(ctx context.Context, sid core.SessionID, req SummarizeRequest) (*SummarizeResult, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	language := req.Language
	if language == "" {
		language = req.Source.Language
	}
	if language == "" {
		language = "auto"
	}
	if err := core.ValidateTranscriptionLanguage(language); err != nil {
		return nil, err
	}

	transcript, _, err := s.transcript(ctx, sid, core.FeatureSummarize, req.Source)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, transcript, language, mode, modelOr(req.Model, ai.DefaultModel))
	if err != nil {
		return nil, err
	}

	result := &SummarizeResult{
		Transcript: transcript,
		Summary:    summary,
		Share:      FormatSummary(transcript, summary),
	}
	s.saveShareText(ctx, sid, core.FeatureSummarize, result.Share)
	return result, nil
}

func (s *Service) summarize(ctx context.Context, text, language string, mode Mode, model string) (string, error) {
	t := &Template[string]{
		Feature:   core.FeatureSummarize,
		MaxLength: summaryMaxLength,
		Progress:  s.newProgress(core.FeatureSummarize),
		Logger:    s.logger,
	}
	if mode == ModeClassic {
		params := summaryParams(language)
		t.Call = func(ctx context.Context, part Part) (string, error) {
			return s.pipelines.Summarize(ctx, part.Text, params)
		}
	} else {
		t.Call = func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:     model,
				System:    summarySystemPrompt(language),
				Prompt:    summaryPrompt(part),
				MaxTokens: summaryMaxTokens,
			})
		}
	}

	summaries, err := t.Run(ctx, text)
	if err != nil {
		return "", err
	}
	return bulletList(summaries), nil
}

// summaryParams selects mT5 for Arabic and BART for everything else.
func summaryParams(language string) ai.SummaryParams {
	if language == "ar" {
		return ai.SummaryParams{Model: ai.SummaryModelAR, MaxLength: 200, MinLength: 50}
	}
	return ai.SummaryParams{Model: ai.SummaryModelEN, MaxLength: 150, MinLength: 40}
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
