package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/storage"
)

// speechScope is the transcript scope holding a feature's narration text.
func speechScope(feature core.Feature) string {
	return "speech:" + string(feature)
}

func (s *Service) saveSpeechText(ctx context.Context, sid core.SessionID, feature core.Feature, text string) {
	if s.store == nil {
		return
	}
	entry := storage.TranscriptEntry{SourceKey: string(feature), Text: text}
	if err := s.store.PutTranscript(ctx, sid, speechScope(feature), entry); err != nil {
		s.logger.Warn("failed to store narration", "feature", feature, "err", err)
	}
}

// Speech renders the narration of the session's last podcast or video
// script and returns the audio file path.
func (s *Service) Speech(ctx context.Context, sid core.SessionID, feature core.Feature, lang string) (string, error) {
	if feature != core.FeaturePodcast && feature != core.FeatureVideo {
		return "", core.ErrUnknownFeature
	}
	if s.store == nil {
		return "", ErrNoSpeechText
	}
	entry, err := s.store.Transcript(ctx, sid, speechScope(feature))
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNoSpeechText
	}
	if err != nil {
		return "", err
	}
	return s.Speak(ctx, feature, entry.Text, lang)
}

// Speak renders text to an audio file. The language defaults to English.
func (s *Service) Speak(ctx context.Context, feature core.Feature, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoSpeechText
	}
	if s.synthesizer == nil {
		return "", stageError(feature, StageFormat, errors.New("speech synthesis is not configured"))
	}
	if lang == "" {
		lang = "en"
	}
	if err := core.ValidateTargetLanguage(lang); err != nil {
		return "", err
	}
	path, err := s.synthesizer.Synthesize(ctx, text, lang)
	if err != nil {
		return "", stageError(feature, StageFormat, err)
	}
	return path, nil
}
