package pipeline

import (
	"context"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
)

const (
	translateLLMMaxLength     = 300
	translateClassicMaxLength = 200
	translateMaxTokens        = 800
)

// TranslateRequest asks for a translation of a text or transcript.
type TranslateRequest struct {
	Source Source
	Target string
	Mode   Mode
	Model  string
}

// TranslateResult holds the transcript and its translation.
type TranslateResult struct {
	Transcript  string
	Translation string
	Share       string
}

// Translate translates the source into the target language.
func (s *Service) Translate(ctx context.Context, sid core.SessionID, req TranslateRequest) (*TranslateResult, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	if err := core.ValidateTargetLanguage(req.Target); err != nil {
		return nil, err
	}

	transcript, _, err := s.transcript(ctx, sid, core.FeatureTranslate, req.Source)
	if err != nil {
		return nil, err
	}

	translation, err := s.translate(ctx, transcript, req.Target, mode, modelOr(req.Model, ai.DefaultModel))
	if err != nil {
		return nil, err
	}

	result := &TranslateResult{
		Transcript:  transcript,
		Translation: translation,
		Share:       FormatTranslation(transcript, translation),
	}
	s.saveShareText(ctx, sid, core.FeatureTranslate, result.Share)
	return result, nil
}

func (s *Service) translate(ctx context.Context, text, target string, mode Mode, model string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	t := &Template[string]{
		Feature:  core.FeatureTranslate,
		Progress: s.newProgress(core.FeatureTranslate),
		Logger:   s.logger,
	}
	if mode == ModeClassic {
		t.MaxLength = translateClassicMaxLength
		opus, ok := translationModel(target)
		t.Call = func(ctx context.Context, part Part) (string, error) {
			if !ok {
				return part.Text, nil
			}
			return s.pipelines.Translate(ctx, part.Text, opus)
		}
	} else {
		t.MaxLength = translateLLMMaxLength
		t.Call = func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:     model,
				System:    translationSystemPrompt(target),
				Prompt:    part.Text,
				MaxTokens: translateMaxTokens,
			})
		}
	}

	outputs, err := t.Run(ctx, text)
	if err != nil {
		return "", err
	}
	return strings.Join(outputs, "\n"), nil
}

// translationModel picks the opus-mt direction for a target. Other targets
// have no model and pass text through unchanged.
func translationModel(target string) (string, bool) {
	switch target {
	case "ar":
		return ai.TranslationModelENAR, true
	case "en":
		return ai.TranslationModelAREN, true
	}
	return "", false
}
