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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/storage"
)

// ErrMediaUnavailable indicates a file or URL source reached a service that
// was built without media tools.
var ErrMediaUnavailable = errors.New("media tools are not configured")

// Source is the input of a transcript-based feature. Typed text wins over
// a file, and a file wins over a URL.
type Source struct {
	Text string

	// File is the path of an upload already saved by media.Acquirer.
	File string

	URL string

	// Language is the transcription hint: "auto", "en" or "ar".
	Language string
}

// Service runs the seven features against the configured collaborators.
type Service struct {
	generator   ai.Generator
	pipelines   ai.LocalPipelines
	synthesizer ai.Synthesizer
	acquirer    media.Acquirer
	transcriber media.Transcriber
	store       storage.SessionStore
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithMedia sets the acquirer and transcriber used for file and URL sources.
func WithMedia(acquirer media.Acquirer, transcriber media.Transcriber) Option {
	return func(s *Service) error {
		if acquirer == nil || transcriber == nil {
			return errors.New("pipeline: acquirer and transcriber must both be set")
		}
		s.acquirer = acquirer
		s.transcriber = transcriber
		return nil
	}
}

// WithStore sets the session store used for transcript caching, share
// texts and Q&A history. Without a store nothing is cached.
func WithStore(store storage.SessionStore) Option {
	return func(s *Service) error {
		s.store = store
		return nil
	}
}

// WithProgressWriter reports per-part progress to w.
func WithProgressWriter(w io.Writer) Option {
	return func(s *Service) error {
		s.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "pipeline")
		return nil
	}
}

// NewService creates a feature service from an AI provider.
func NewService(provider ai.AIProvider, opts ...Option) (*Service, error) {
	if provider == nil || provider.Generator() == nil {
		return nil, ErrGeneratorRequired
	}
	if provider.Pipelines() == nil {
		return nil, ErrPipelinesRequired
	}

	s := &Service{
		generator:   provider.Generator(),
		pipelines:   provider.Pipelines(),
		synthesizer: provider.Synthesizer(),
		logger:      slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Invalidate drops the cached transcript of a feature, or everything the
// session holds when feature is empty.
func (s *Service) Invalidate(ctx context.Context, sid core.SessionID, feature core.Feature) error {
	if s.store == nil {
		return nil
	}
	if feature == "" {
		return s.store.InvalidateSession(ctx, sid)
	}
	return s.store.Invalidate(ctx, sid, string(feature))
}

// ShareText returns the last share text a feature produced for the session.
func (s *Service) ShareText(ctx context.Context, sid core.SessionID, feature core.Feature) (string, error) {
	if s.store == nil {
		return "", storage.ErrNotFound
	}
	return s.store.ShareText(ctx, sid, feature)
}

// QAHistory returns the session's questions and answers.
func (s *Service) QAHistory(ctx context.Context, sid core.SessionID) ([]core.QAPair, error) {
	if s.store == nil {
		return []core.QAPair{}, nil
	}
	return s.store.QAHistory(ctx, sid)
}

// transcript resolves a source to text. It returns how long transcription
// took, which is zero for typed text and cache hits.
func (s *Service) transcript(ctx context.Context, sid core.SessionID, feature core.Feature, src Source) (string, time.Duration, error) {
	if strings.TrimSpace(src.Text) != "" {
		return src.Text, 0, nil
	}
	if src.File == "" && strings.TrimSpace(src.URL) == "" {
		return "", 0, fmt.Errorf("%w: %w", core.ErrMissingInput, core.ErrNoSource)
	}
	if err := core.ValidateTranscriptionLanguage(src.Language); err != nil {
		return "", 0, err
	}
	if s.acquirer == nil || s.transcriber == nil {
		return "", 0, stageError(feature, StageAcquire, ErrMediaUnavailable)
	}

	language := src.Language
	if language == "" {
		language = "auto"
	}
	key, err := sourceKey(src)
	if err != nil {
		return "", 0, stageError(feature, StageAcquire, err)
	}

	scope := string(feature)
	if cached, ok := s.cachedTranscript(ctx, sid, scope, key, language); ok {
		return cached, 0, nil
	}

	audio := src.File
	if audio == "" {
		audio, err = s.acquirer.Download(ctx, strings.TrimSpace(src.URL))
		if err != nil {
			return "", 0, stageError(feature, StageAcquire, err)
		}
		defer s.acquirer.Discard(audio)
	}

	start := time.Now()
	text, err := s.transcriber.Transcribe(ctx, audio, language)
	if err != nil {
		return "", 0, stageError(feature, StageTranscribe, err)
	}
	elapsed := time.Since(start)
	s.logger.Info("transcribed source", "feature", feature, "source", key, "elapsed", elapsed, "chars", len(text))

	if s.store != nil {
		entry := storage.TranscriptEntry{SourceKey: key, Language: language, Text: text}
		if err := s.store.PutTranscript(ctx, sid, scope, entry); err != nil {
			s.logger.Warn("failed to cache transcript", "feature", feature, "err", err)
		}
	}
	return text, elapsed, nil
}

func (s *Service) cachedTranscript(ctx context.Context, sid core.SessionID, scope, key, language string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	entry, err := s.store.Transcript(ctx, sid, scope)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read cached transcript", "scope", scope, "err", err)
		}
		return "", false
	}
	if entry.SourceKey != key || entry.Language != language {
		return "", false
	}
	s.logger.Debug("using cached transcript", "scope", scope, "source", key)
	return entry.Text, true
}

// sourceKey fingerprints uploads by content and URLs by their text.
func sourceKey(src Source) (string, error) {
	if src.File != "" {
		f, err := os.Open(src.File)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", media.ErrFileNotFound, src.File)
			}
			return "", err
		}
		defer f.Close()
		id, err := core.IDFromReader(f)
		if err != nil {
			return "", err
		}
		return "file:" + id.String(), nil
	}
	return "url:" + core.IDFromContent(strings.TrimSpace(src.URL)).String(), nil
}

func (s *Service) saveShareText(ctx context.Context, sid core.SessionID, feature core.Feature, text string) {
	if s.store == nil {
		return
	}
	if err := s.store.PutShareText(ctx, sid, feature, text); err != nil {
		s.logger.Warn("failed to store share text", "feature", feature, "err", err)
	}
}

func (s *Service) newProgress(feature core.Feature) Progress {
	if s.progress == nil {
		return nil
	}
	return NewProgressTracker(s.progress, string(feature))
}

func modelOr(model, fallback string) string {
	if strings.TrimSpace(model) == "" {
		return fallback
	}
	return model
}
