package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizer_Synthesize(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "ar", r.URL.Query().Get("tl"))
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		mu.Unlock()
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("MP3"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	synth, err := NewSynthesizer(ai.NewConfig(ai.WithSpeechHost(srv.URL), ai.WithWorkDir(dir)))
	require.NoError(t, err)

	text := strings.Repeat("word ", 50) // 250 accounted chars -> 3 pieces
	path, err := synth.Synthesize(context.Background(), text, "ar")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))
	assert.True(t, strings.HasSuffix(path, "_speech.mp3"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MP3MP3MP3", string(data))
	assert.Len(t, queries, 3)
}

func TestSynthesizer_EmptyText(t *testing.T) {
	synth, err := NewSynthesizer(ai.NewConfig(ai.WithWorkDir(t.TempDir())))
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), "   ", "en")
	assert.ErrorIs(t, err, core.ErrMissingInput)
}

func TestSynthesizer_ErrorRemovesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	dir := t.TempDir()
	synth, err := NewSynthesizer(ai.NewConfig(ai.WithSpeechHost(srv.URL), ai.WithWorkDir(dir)))
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), "hello there", "en")
	require.ErrorIs(t, err, ErrSynthesis)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
