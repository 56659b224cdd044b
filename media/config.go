package media

import (
	"errors"
	"log/slog"
)

// Config locates the external tools and the working directory.
type Config struct {
	// WorkDir receives uploads, downloads and normalized audio.
	WorkDir string `yaml:"work_dir"`

	FFmpegPath  string `yaml:"ffmpeg"`
	YTDLPPath   string `yaml:"yt_dlp"`
	WhisperPath string `yaml:"whisper"`

	// WhisperModel is the ggml model file passed to whisper-cli.
	WhisperModel string `yaml:"whisper_model"`

	// WindowSeconds is the length of each transcription window.
	WindowSeconds int `yaml:"window_seconds"`

	// Threads is passed to whisper-cli when positive.
	Threads int `yaml:"threads"`
}

// DefaultConfig returns tool names resolved from PATH and 180 second windows.
func DefaultConfig() Config {
	return Config{
		WorkDir:       "temp",
		FFmpegPath:    "ffmpeg",
		YTDLPPath:     "yt-dlp",
		WhisperPath:   "whisper-cli",
		WhisperModel:  "models/ggml-small.bin",
		WindowSeconds: 180,
	}
}

// Validate fills empty fields with defaults and rejects invalid values.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.WorkDir == "" {
		c.WorkDir = def.WorkDir
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = def.FFmpegPath
	}
	if c.YTDLPPath == "" {
		c.YTDLPPath = def.YTDLPPath
	}
	if c.WhisperPath == "" {
		c.WhisperPath = def.WhisperPath
	}
	if c.WhisperModel == "" {
		c.WhisperModel = def.WhisperModel
	}
	if c.WindowSeconds == 0 {
		c.WindowSeconds = def.WindowSeconds
	}
	if c.WindowSeconds < 0 {
		return errors.New("media config: window_seconds must be positive")
	}
	if c.Threads < 0 {
		return errors.New("media config: threads cannot be negative")
	}
	return nil
}

type settings struct {
	runner CommandRunner
	logger *slog.Logger
}

// Option configures an Acquirer or Transcriber.
type Option func(*settings)

// WithRunner replaces the process runner.
func WithRunner(runner CommandRunner) Option {
	return func(s *settings) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func applyOptions(component string, opts []Option) settings {
	s := settings{
		runner: ExecRunner{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = s.logger.With("component", component)
	return s
}
