package pipeline

import (
	"context"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/chunker"
	"github.com/poiesic/natiq/core"
)

const (
	videoBodyPartWords = 400
	videoChunkLength   = 500
	videoTokenMargin   = 100
)

// VideoRequest asks for a narrated video script.
type VideoRequest struct {
	Topic    string
	Style    string
	Duration int
	Model    string
}

// VideoResult holds the structured script.
type VideoResult struct {
	Script    core.VideoScript
	WordCount int
	Share     string
}

// GenerateVideoScript writes an introduction, a body in sequential parts of
// about 400 words and a conclusion sized to Duration minutes.
func (s *Service) GenerateVideoScript(ctx context.Context, sid core.SessionID, req VideoRequest) (*VideoResult, error) {
	if err := core.ValidateScriptRequest(req.Topic, req.Duration); err != nil {
		return nil, err
	}
	style := req.Style
	if style == "" {
		style = core.VideoStyles[0]
	}

	script, err := s.videoScript(ctx, req.Topic, style, req.Duration, modelOr(req.Model, ai.DefaultModel))
	if err != nil {
		return nil, err
	}

	result := &VideoResult{
		Script:    script,
		WordCount: chunker.Words(script.Narration),
	}
	result.Share = FormatVideo(req.Topic, style, req.Duration, result.WordCount, script.Chunks)

	s.saveShareText(ctx, sid, core.FeatureVideo, result.Share)
	s.saveSpeechText(ctx, sid, core.FeatureVideo, script.Narration)
	return result, nil
}

// videoWordBudget splits the target length into 15% intro, 70% body and
// the remainder for the conclusion.
func videoWordBudget(duration int) (intro, body, conclusion int) {
	target := duration * wordsPerMinute
	body = int(float64(target) * 0.7)
	intro = int(float64(target) * 0.15)
	conclusion = target - (body + intro)
	return intro, body, conclusion
}

func (s *Service) videoScript(ctx context.Context, topic, style string, duration int, model string) (core.VideoScript, error) {
	introWords, bodyWords, conclusionWords := videoWordBudget(duration)

	generate := func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		out, err := s.generator.Generate(ctx, ai.GenerateRequest{Model: model, Prompt: prompt, MaxTokens: maxTokens})
		return out, stageError(core.FeatureVideo, StageProcess, err)
	}

	intro, err := generate(ctx, videoIntroPrompt(topic, style, introWords), introWords+videoTokenMargin)
	if err != nil {
		return core.VideoScript{}, err
	}

	t := &Template[string]{
		Feature: core.FeatureVideo,
		Call: func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:     model,
				Prompt:    videoBodyPrompt(part, topic, style),
				MaxTokens: videoBodyPartWords + videoTokenMargin,
			})
		},
		Progress: s.newProgress(core.FeatureVideo),
		Logger:   s.logger,
	}
	parts := (bodyWords + videoBodyPartWords - 1) / videoBodyPartWords
	bodyParts, err := t.RunParts(ctx, make([]string, parts))
	if err != nil {
		return core.VideoScript{}, err
	}
	body := strings.Join(bodyParts, " ")

	conclusion, err := generate(ctx, videoConclusionPrompt(topic, style, conclusionWords), conclusionWords+videoTokenMargin)
	if err != nil {
		return core.VideoScript{}, err
	}

	narration := intro + "\n\n" + body + "\n\n" + conclusion
	return core.VideoScript{
		Title:           topic,
		Style:           style,
		DurationMinutes: duration,
		Sections:        core.VideoSections{Intro: intro, Body: body, Conclusion: conclusion},
		Narration:       narration,
		Chunks:          chunker.Chunk(narration, videoChunkLength),
	}, nil
}
