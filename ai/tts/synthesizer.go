// Package tts implements ai.Synthesizer over the Google Translate speech
// endpoint, the service behind the gTTS tool.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/chunker"
	"github.com/poiesic/natiq/core"
)

// maxPieceLength is the longest text the endpoint accepts per request.
const maxPieceLength = 100

// ErrSynthesis is returned when the speech endpoint rejects a request.
var ErrSynthesis = errors.New("speech synthesis failed")

// Synthesizer implements ai.Synthesizer.
type Synthesizer struct {
	client  *resty.Client
	workDir string
	logger  *slog.Logger
}

var _ ai.Synthesizer = (*Synthesizer)(nil)

func newSynthesizer(config *ai.Config) (*Synthesizer, error) {
	config.Normalize()
	if config.SpeechHost == "" {
		return nil, errors.New("tts: SpeechHost is required")
	}
	if config.WorkDir == "" {
		return nil, errors.New("tts: WorkDir is required")
	}

	client := resty.New().
		SetBaseURL(config.SpeechHost).
		SetHeader("User-Agent", "Mozilla/5.0")
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	return &Synthesizer{
		client:  client,
		workDir: config.WorkDir,
		logger:  slog.Default().With("component", "tts"),
	}, nil
}

// NewSynthesizer creates a speech synthesizer writing MP3 files into the
// configured work directory.
//
// Returns ai.Synthesizer interface to enforce abstraction.
func NewSynthesizer(config *ai.Config) (ai.Synthesizer, error) {
	return newSynthesizer(config)
}

// Synthesize speaks text in lang and writes a single MP3 file.
// Long text is sent in word-aligned pieces whose audio is concatenated.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, lang string) (string, error) {
	pieces := chunker.Chunk(text, maxPieceLength)
	if len(pieces) == 0 {
		return "", fmt.Errorf("%w: nothing to speak", core.ErrMissingInput)
	}
	if lang == "" || lang == "auto" {
		lang = "en"
	}

	if err := os.MkdirAll(s.workDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(s.workDir, strings.ReplaceAll(uuid.NewString(), "-", "")+"_speech.mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	total := strconv.Itoa(len(pieces))
	for i, piece := range pieces {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ie":      "UTF-8",
				"client":  "tw-ob",
				"tl":      lang,
				"q":       piece,
				"total":   total,
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(len([]rune(piece))),
			}).
			Get("/translate_tts")
		if err != nil {
			os.Remove(path)
			return "", err
		}
		if resp.IsError() {
			os.Remove(path)
			return "", fmt.Errorf("%w: status %d: %s", ErrSynthesis, resp.StatusCode(), resp.String())
		}
		if _, err := f.Write(resp.Body()); err != nil {
			os.Remove(path)
			return "", err
		}
	}

	s.logger.Debug("speech rendered", "path", path, "pieces", len(pieces), "lang", lang)
	return path, nil
}
