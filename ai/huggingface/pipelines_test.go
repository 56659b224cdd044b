package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipelines(t *testing.T, handler http.HandlerFunc) *Pipelines {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := newPipelines(ai.NewConfig(ai.WithPipelines(srv.URL, "hf-token")))
	require.NoError(t, err)
	return p
}

func TestPipelines_Summarize(t *testing.T) {
	var got inferenceRequest
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/facebook/bart-large-cnn", r.URL.Path)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"summary_text": "A short summary."}]`))
	})

	out, err := p.Summarize(context.Background(), "long text", ai.SummaryParams{
		Model:     ai.SummaryModelEN,
		MaxLength: 150,
		MinLength: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)

	assert.Equal(t, "long text", got.Inputs)
	require.NotNil(t, got.Parameters)
	assert.Equal(t, 150, got.Parameters.MaxLength)
	assert.Equal(t, 40, got.Parameters.MinLength)
	assert.False(t, got.Parameters.DoSample)
	assert.True(t, got.Options.WaitForModel)
}

func TestPipelines_Translate(t *testing.T) {
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/Helsinki-NLP/opus-mt-en-ar", r.URL.Path)
		_, _ = w.Write([]byte(`[{"translation_text": "مرحبا"}]`))
	})

	out, err := p.Translate(context.Background(), "hello", ai.TranslationModelENAR)
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", out)
}

func TestPipelines_ErrorStatus(t *testing.T) {
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "Model is loading"}`))
	})

	_, err := p.Translate(context.Background(), "hello", ai.TranslationModelAREN)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInference)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "Model is loading")
}

func TestPipelines_MalformedBody(t *testing.T) {
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := p.Summarize(context.Background(), "x", ai.SummaryParams{Model: ai.SummaryModelAR})
	assert.ErrorIs(t, err, core.ErrMalformedOutput)
}

func TestPipelines_EmptyArray(t *testing.T) {
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := p.Translate(context.Background(), "x", ai.TranslationModelAREN)
	assert.ErrorIs(t, err, core.ErrEmptyResponse)
}

func TestPipelines_LoadOnce(t *testing.T) {
	var calls atomic.Int32
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.Contains(r.URL.Path, "opus-mt") {
			_, _ = w.Write([]byte(`[{"translation_text": "x"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"summary_text": "x"}]`))
	})

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, int32(4), calls.Load())

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, int32(4), calls.Load(), "second Load must not reload models")
}

func TestPipelines_LoadFailureCanRetry(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	p := newTestPipelines(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	require.Error(t, p.Load(context.Background()))
	fail.Store(false)
	require.NoError(t, p.Load(context.Background()))
}
