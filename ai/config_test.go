package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, BackendOpenRouter, cfg.Backend)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Host)
	assert.Equal(t, "mistralai/mistral-7b-instruct", cfg.Model)
	assert.Equal(t, "https://api-inference.huggingface.co", cfg.PipelinesHost)
	assert.Equal(t, "temp", cfg.WorkDir)
	assert.Zero(t, cfg.Timeout)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with key and model", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"), WithModel("openai/gpt-4o-mini"))

		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "openai/gpt-4o-mini", cfg.Model)
	})

	t.Run("with gemini", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendGemini), WithGemini("g-key", ""))

		assert.Equal(t, BackendGemini, cfg.Backend)
		assert.Equal(t, "g-key", cfg.GeminiAPIKey)
		assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://localhost:11434"),
			WithPipelines("http://tgi:8080/", "hf-token"),
			WithSpeechHost("http://tts.local/"),
			WithWorkDir("/tmp/natiq"),
			WithTimeout(time.Minute),
		)

		assert.Equal(t, "http://localhost:11434", cfg.Host)
		assert.Equal(t, "http://tgi:8080/", cfg.PipelinesHost)
		assert.Equal(t, "hf-token", cfg.PipelinesToken)
		assert.Equal(t, "http://tts.local/", cfg.SpeechHost)
		assert.Equal(t, "/tmp/natiq", cfg.WorkDir)
		assert.Equal(t, time.Minute, cfg.Timeout)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "adds v1", host: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "trailing slash", host: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "already normalized", host: "https://openrouter.ai/api/v1", want: "https://openrouter.ai/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host), WithPipelines("http://tgi:8080/", ""))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
			assert.Equal(t, "http://tgi:8080", cfg.PipelinesHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid openrouter", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"))
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey is required")
	})

	t.Run("valid gemini without openrouter key", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendGemini), WithGemini("g-key", "gemini-2.0-flash"))
		require.NoError(t, cfg.Validate())
	})

	t.Run("gemini without key", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendGemini))
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := NewConfig(WithBackend("carrier-pigeon"), WithAPIKey("k"))
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty model", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("k"), WithModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("k"), WithTimeout(-time.Second))
		assert.Error(t, cfg.Validate())
	})
}

func TestTemperature(t *testing.T) {
	p := Temperature(0.2)
	require.NotNil(t, p)
	assert.Equal(t, 0.2, *p)
}
