package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Transcriber converts normalized audio into text.
type Transcriber interface {
	// Transcribe returns the full transcript of the audio at path.
	// language is "auto" (or empty) for detection, or an explicit code.
	Transcribe(ctx context.Context, path string, language string) (string, error)
}

type whisperTranscriber struct {
	config Config
	settings
}

func newTranscriber(config Config, opts ...Option) (*whisperTranscriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &whisperTranscriber{
		config:   config,
		settings: applyOptions("media-transcriber", opts),
	}, nil
}

// NewTranscriber creates a Transcriber that splits audio into fixed windows
// with ffmpeg and recognizes each with whisper-cli.
func NewTranscriber(config Config, opts ...Option) (Transcriber, error) {
	return newTranscriber(config, opts...)
}

// Transcribe normalizes the input, splits it into windows, transcribes the
// windows in order and joins their text with single spaces.
func (t *whisperTranscriber) Transcribe(ctx context.Context, path string, language string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", err
	}

	if err := os.MkdirAll(t.config.WorkDir, 0755); err != nil {
		return "", err
	}
	tempDir, err := os.MkdirTemp(t.config.WorkDir, "transcribe-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			t.logger.Warn("failed to remove transcription windows", "dir", tempDir, "err", err)
		}
	}()

	audio := filepath.Join(tempDir, "audio.wav")
	if _, err := t.runner.Run(ctx, t.config.FFmpegPath, buildNormalizeArgs(path, audio)...); err != nil {
		return "", err
	}

	pattern := filepath.Join(tempDir, "window_%04d.wav")
	if _, err := t.runner.Run(ctx, t.config.FFmpegPath, buildSegmentArgs(audio, pattern, t.config.WindowSeconds)...); err != nil {
		return "", err
	}

	windows, err := listWindows(tempDir)
	if err != nil {
		return "", err
	}
	if len(windows) == 0 {
		return "", ErrNoAudio
	}

	texts := make([]string, 0, len(windows))
	for i, window := range windows {
		t.logger.Debug("transcribing window", "window", i+1, "of", len(windows))
		text, err := t.transcribeWindow(ctx, window, language)
		if err != nil {
			return "", err
		}
		texts = append(texts, text)
	}

	return strings.TrimSpace(strings.Join(texts, " ")), nil
}

func (t *whisperTranscriber) transcribeWindow(ctx context.Context, window, language string) (string, error) {
	base := strings.TrimSuffix(window, filepath.Ext(window))
	args := buildWhisperArgs(t.config.WhisperModel, window, base, language, t.config.Threads)
	if _, err := t.runner.Run(ctx, t.config.WhisperPath, args...); err != nil {
		return "", err
	}

	data, err := os.ReadFile(base + ".txt")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func listWindows(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var windows []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "window_") || filepath.Ext(name) != ".wav" {
			continue
		}
		windows = append(windows, filepath.Join(dir, name))
	}
	sort.Strings(windows)
	return windows, nil
}

func buildSegmentArgs(input, pattern string, seconds int) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", input,
		"-f", "segment",
		"-segment_time", strconv.Itoa(seconds),
		"-c", "copy",
		pattern,
	}
}

func buildWhisperArgs(model, audio, outputBase, language string, threads int) []string {
	args := []string{
		"-m", model,
		"-f", audio,
		"-otxt",
		"-of", outputBase,
		"-nt",
		"-l", normalizeLanguage(language),
	}
	if threads > 0 {
		args = append(args, "-t", strconv.Itoa(threads))
	}
	return args
}

// normalizeLanguage maps the UI's "auto" (or nothing) to whisper's own
// auto-detection keyword.
func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return "auto"
	}
	return language
}
