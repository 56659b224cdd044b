package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
)

const (
	diarizationMaxLength = 2500
	diarizationMaxTokens = 2000
)

// DiarizeRequest asks for speaker turns of a transcript.
type DiarizeRequest struct {
	Source Source
	Model  string
}

// DiarizeResult holds the merged speaker turns and timings.
type DiarizeResult struct {
	Transcript     string
	Segments       []core.Segment
	Share          string
	TranscribeTime time.Duration
	ProcessTime    time.Duration
}

// Diarize splits a transcript into speaker turns.
func (s *Service) Diarize(ctx context.Context, sid core.SessionID, req DiarizeRequest) (*DiarizeResult, error) {
	transcript, transcribeTime, err := s.transcript(ctx, sid, core.FeatureDiarization, req.Source)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	segments, err := s.diarize(ctx, transcript, modelOr(req.Model, ai.DialogueModel))
	if err != nil {
		return nil, err
	}

	result := &DiarizeResult{
		Transcript:     transcript,
		Segments:       segments,
		Share:          FormatSegments(segments),
		TranscribeTime: transcribeTime,
		ProcessTime:    time.Since(start),
	}
	s.saveShareText(ctx, sid, core.FeatureDiarization, result.Share)
	return result, nil
}

func (s *Service) diarize(ctx context.Context, transcript, model string) ([]core.Segment, error) {
	if strings.TrimSpace(transcript) == "" {
		return []core.Segment{{Speaker: "Unknown", Text: ""}}, nil
	}

	t := &Template[[]core.Segment]{
		Feature:   core.FeatureDiarization,
		MaxLength: diarizationMaxLength,
		Tolerant:  true,
		Call: func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:       model,
				Prompt:      diarizationPrompt(part),
				MaxTokens:   diarizationMaxTokens,
				Temperature: ai.Temperature(0),
			})
		},
		Parse: func(part Part, raw string) ([]core.Segment, error) {
			return decodeJSON[[]core.Segment](raw)
		},
		Fallback: func(part Part, raw string) []core.Segment {
			return []core.Segment{{Speaker: fmt.Sprintf("Part %d", part.Index), Text: raw}}
		},
		Progress: s.newProgress(core.FeatureDiarization),
		Logger:   s.logger,
	}

	parts, err := t.Run(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return mergeSegments(parts), nil
}

func mergeSegments(parts [][]core.Segment) []core.Segment {
	segments := []core.Segment{}
	for _, part := range parts {
		segments = append(segments, part...)
	}
	return segments
}
