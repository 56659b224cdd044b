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

// Package config loads Natiq settings from a YAML file, a .env file and the
// environment, in increasing order of precedence. Command-line flags are
// applied by the caller after Load returns.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/share"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	// Listen is the HTTP address of the web UI.
	// Default: ":8501"
	Listen string `yaml:"listen"`

	// WorkDir receives uploads, audio and documents.
	// Default: "temp"
	WorkDir string `yaml:"work_dir"`

	LLM       LLMConfig       `yaml:"llm"`
	Pipelines PipelinesConfig `yaml:"pipelines"`
	Speech    SpeechConfig    `yaml:"speech"`
	Media     media.Config    `yaml:"media"`
	Session   SessionConfig   `yaml:"session"`
	Runner    RunnerConfig    `yaml:"runner"`
	Share     ShareConfig     `yaml:"share"`
	Watch     WatchConfig     `yaml:"watch"`
}

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Backend      ai.Backend    `yaml:"backend"`
	Host         string        `yaml:"host"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// PipelinesConfig locates the pretrained summarization and translation models.
type PipelinesConfig struct {
	Host  string `yaml:"host"`
	Token string `yaml:"token"`

	// Preload warms every model at startup.
	Preload bool `yaml:"preload"`
}

type SpeechConfig struct {
	Host string `yaml:"host"`
}

// SessionConfig controls the per-session cache.
type SessionConfig struct {
	// Path of the on-disk store. Empty keeps sessions in memory.
	Path string `yaml:"path"`

	// TTL of cached transcripts, share texts and Q&A history.
	// Default: 2h
	TTL time.Duration `yaml:"ttl"`
}

type RunnerConfig struct {
	// PoolSize bounds concurrent feature invocations.
	// Default: runtime.NumCPU()
	PoolSize int `yaml:"pool_size"`
}

// ShareConfig holds sharing credentials.
type ShareConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID string `yaml:"telegram_chat_id"`
	EmailUser      string `yaml:"email_user"`
	EmailPass      string `yaml:"email_pass"`
	SMTPServer     string `yaml:"smtp_server"`
	SMTPPort       int    `yaml:"smtp_port"`

	// Format of attached documents: pdf or docx.
	Format share.Format `yaml:"format"`
}

// WatchConfig configures the inbox watcher.
type WatchConfig struct {
	Dir       string   `yaml:"dir"`
	Feature   string   `yaml:"feature"`
	Language  string   `yaml:"language"`
	Target    string   `yaml:"target"`
	Channels  []string `yaml:"channels"`
	Recipient string   `yaml:"recipient"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the optional YAML file at path and the optional env file,
// applies environment overrides and validates the result. Variables set
// in the process environment win over the env file.
func Load(path, envFile string) (*Config, error) {
	c := &Config{}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := c.decode(f); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
		if vars != nil {
			fileVars = vars
		}
	}
	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if err := c.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"OPENROUTER_API_KEY": &c.LLM.APIKey,
		"GEMINI_API_KEY":     &c.LLM.GeminiAPIKey,
		"HF_API_TOKEN":       &c.Pipelines.Token,
		"TELEGRAM_BOT_TOKEN": &c.Share.TelegramToken,
		"TELEGRAM_CHAT_ID":   &c.Share.TelegramChatID,
		"EMAIL_USER":         &c.Share.EmailUser,
		"EMAIL_PASS":         &c.Share.EmailPass,
		"SMTP_SERVER":        &c.Share.SMTPServer,
		"NATIQ_WORK_DIR":     &c.WorkDir,
	}
	for key, field := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SMTP_PORT %q is not a number", ErrInvalidConfig, v)
		}
		c.Share.SMTPPort = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8501"
	}
	if c.WorkDir == "" {
		c.WorkDir = "temp"
	}

	def := ai.DefaultConfig()
	if c.LLM.Backend == "" {
		c.LLM.Backend = def.Backend
	}
	if c.LLM.Host == "" {
		c.LLM.Host = def.Host
	}
	if c.LLM.Model == "" {
		c.LLM.Model = def.Model
	}
	if c.LLM.GeminiModel == "" {
		c.LLM.GeminiModel = def.GeminiModel
	}
	if c.Pipelines.Host == "" {
		c.Pipelines.Host = def.PipelinesHost
	}
	if c.Speech.Host == "" {
		c.Speech.Host = def.SpeechHost
	}

	if c.Media.WorkDir == "" {
		c.Media.WorkDir = c.WorkDir
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 2 * time.Hour
	}
	if c.Runner.PoolSize == 0 {
		c.Runner.PoolSize = max(1, runtime.NumCPU())
	}
	if c.Share.SMTPServer == "" {
		c.Share.SMTPServer = "smtp.gmail.com"
	}
	if c.Share.SMTPPort == 0 {
		c.Share.SMTPPort = 587
	}
	if c.Share.Format == "" {
		c.Share.Format = share.FormatPDF
	}
	if c.Watch.Dir == "" {
		c.Watch.Dir = "inbox"
	}
	if c.Watch.Feature == "" {
		c.Watch.Feature = string(core.FeatureSummarize)
	}
	if c.Watch.Target == "" {
		c.Watch.Target = "en"
	}
}

// Validate fills defaults and rejects invalid values.
// API keys are not required here; the AI backend checks them when it is
// built, so commands that never call a model still work.
func (c *Config) Validate() error {
	c.applyDefaults()

	if err := c.Media.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.LLM.Backend != ai.BackendOpenRouter && c.LLM.Backend != ai.BackendGemini {
		return fmt.Errorf("%w: llm.backend %q must be openrouter or gemini", ErrInvalidConfig, c.LLM.Backend)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("%w: llm.timeout cannot be negative", ErrInvalidConfig)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("%w: session.ttl cannot be negative", ErrInvalidConfig)
	}
	if c.Runner.PoolSize < 0 {
		return fmt.Errorf("%w: runner.pool_size cannot be negative", ErrInvalidConfig)
	}
	if c.Share.SMTPPort < 1 || c.Share.SMTPPort > 65535 {
		return fmt.Errorf("%w: share.smtp_port %d is out of range", ErrInvalidConfig, c.Share.SMTPPort)
	}
	format, err := share.ParseFormat(string(c.Share.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Share.Format = format

	if _, err := core.ParseFeature(c.Watch.Feature); err != nil {
		return fmt.Errorf("%w: watch.feature: %w", ErrInvalidConfig, err)
	}
	for _, name := range c.Watch.Channels {
		if _, err := share.ParseChannel(name); err != nil {
			return fmt.Errorf("%w: watch.channels: %w", ErrInvalidConfig, err)
		}
	}
	if err := core.ValidateTranscriptionLanguage(c.Watch.Language); err != nil {
		return fmt.Errorf("%w: watch.language: %w", ErrInvalidConfig, err)
	}
	if err := core.ValidateTargetLanguage(c.Watch.Target); err != nil {
		return fmt.Errorf("%w: watch.target: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig returns the settings of the AI provider.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithBackend(c.LLM.Backend),
		ai.WithHost(c.LLM.Host),
		ai.WithAPIKey(c.LLM.APIKey),
		ai.WithModel(c.LLM.Model),
		ai.WithGemini(c.LLM.GeminiAPIKey, c.LLM.GeminiModel),
		ai.WithPipelines(c.Pipelines.Host, c.Pipelines.Token),
		ai.WithSpeechHost(c.Speech.Host),
		ai.WithWorkDir(c.WorkDir),
		ai.WithTimeout(c.LLM.Timeout),
	)
}

// ShareConfig returns the settings of the sharing channels.
func (c *Config) ShareConfig() share.Config {
	return share.Config{
		TelegramToken:  c.Share.TelegramToken,
		TelegramChatID: c.Share.TelegramChatID,
		EmailUser:      c.Share.EmailUser,
		EmailPass:      c.Share.EmailPass,
		SMTPServer:     c.Share.SMTPServer,
		SMTPPort:       c.Share.SMTPPort,
		Format:         c.Share.Format,
		WorkDir:        c.WorkDir,
		Timeout:        c.LLM.Timeout,
	}
}

// Redacted returns a copy safe to print, with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Watch.Channels = append([]string(nil), c.Watch.Channels...)
	for _, s := range []*string{
		&out.LLM.APIKey, &out.LLM.GeminiAPIKey, &out.Pipelines.Token,
		&out.Share.TelegramToken, &out.Share.EmailPass,
	} {
		if *s != "" {
			*s = mask(*s)
		}
	}
	return out
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
