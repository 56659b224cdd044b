package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) storage.SessionStore {
	t.Helper()
	store, err := NewMemoryStore(ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTranscript_PutAndGet(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Transcript(ctx, "s1", "diarization")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	entry := storage.TranscriptEntry{SourceKey: "abc", Language: "en", Text: "hello world"}
	require.NoError(t, store.PutTranscript(ctx, "s1", "diarization", entry))

	got, err := store.Transcript(ctx, "s1", "diarization")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SourceKey)
	assert.Equal(t, "hello world", got.Text)
	assert.False(t, got.CreatedAt.IsZero())

	// Scopes and sessions are isolated.
	_, err = store.Transcript(ctx, "s1", "qa")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Transcript(ctx, "s2", "diarization")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTranscript_Replace(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.PutTranscript(ctx, "s1", "summary", storage.TranscriptEntry{SourceKey: "a", Text: "old"}))
	require.NoError(t, store.PutTranscript(ctx, "s1", "summary", storage.TranscriptEntry{SourceKey: "b", Text: "new"}))

	got, err := store.Transcript(ctx, "s1", "summary")
	require.NoError(t, err)
	assert.Equal(t, "b", got.SourceKey)
	assert.Equal(t, "new", got.Text)
}

func TestShareText(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.ShareText(ctx, "s1", core.FeatureSentiment)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.PutShareText(ctx, "s1", core.FeatureSentiment, "💭 Sentiment Analysis Result"))
	text, err := store.ShareText(ctx, "s1", core.FeatureSentiment)
	require.NoError(t, err)
	assert.Equal(t, "💭 Sentiment Analysis Result", text)
}

func TestQAHistory(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	history, err := store.QAHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, store.AppendQA(ctx, "s1", core.QAPair{Question: "q1", Answer: "a1"}))
	require.NoError(t, store.AppendQA(ctx, "s1", core.QAPair{Question: "q2", Answer: "a2"}))

	history, err = store.QAHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []core.QAPair{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}}, history)
}

func TestQAHistory_SequentialAppendsFromGoroutines(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	// One writer per session, mirroring the runner's per-session lock.
	var wg sync.WaitGroup
	for _, sid := range []core.SessionID{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 5 {
				assert.NoError(t, store.AppendQA(ctx, sid, core.QAPair{Question: string(sid), Answer: string(rune('0' + i))}))
			}
		}()
	}
	wg.Wait()

	for _, sid := range []core.SessionID{"a", "b", "c"} {
		history, err := store.QAHistory(ctx, sid)
		require.NoError(t, err)
		assert.Len(t, history, 5)
	}
}

func TestInvalidate(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.PutTranscript(ctx, "s1", "qa", storage.TranscriptEntry{Text: "x"}))
	require.NoError(t, store.PutTranscript(ctx, "s1", "diarization", storage.TranscriptEntry{Text: "y"}))

	require.NoError(t, store.Invalidate(ctx, "s1", "qa"))
	require.NoError(t, store.Invalidate(ctx, "s1", "missing"))

	_, err := store.Transcript(ctx, "s1", "qa")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Transcript(ctx, "s1", "diarization")
	assert.NoError(t, err)
}

func TestInvalidateSession(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.PutTranscript(ctx, "s1", "qa", storage.TranscriptEntry{Text: "x"}))
	require.NoError(t, store.PutShareText(ctx, "s1", core.FeatureQA, "log"))
	require.NoError(t, store.AppendQA(ctx, "s1", core.QAPair{Question: "q", Answer: "a"}))
	require.NoError(t, store.PutTranscript(ctx, "s10", "qa", storage.TranscriptEntry{Text: "other"}))

	require.NoError(t, store.InvalidateSession(ctx, "s1"))

	_, err := store.Transcript(ctx, "s1", "qa")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.ShareText(ctx, "s1", core.FeatureQA)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	history, err := store.QAHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// The trailing separator keeps "s10" out of "s1".
	got, err := store.Transcript(ctx, "s10", "qa")
	require.NoError(t, err)
	assert.Equal(t, "other", got.Text)
}

func TestTTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for entry expiry")
	}
	store := newTestStore(t, time.Second)
	ctx := context.Background()

	require.NoError(t, store.PutShareText(ctx, "s1", core.FeatureSummarize, "summary"))
	_, err := store.ShareText(ctx, "s1", core.FeatureSummarize)
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)

	_, err = store.ShareText(ctx, "s1", core.FeatureSummarize)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClosedStore(t *testing.T) {
	store, err := NewMemoryStore(time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.ShareText(context.Background(), "s1", core.FeatureQA)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestNewSessionStore_Validation(t *testing.T) {
	_, err := NewSessionStore(nil, time.Hour)
	assert.Error(t, err)

	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewSessionStore(backend, -time.Second)
	assert.Error(t, err)

	store, err := NewSessionStore(backend, 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.False(t, backend.IsClosed(), "store must not close a backend it does not own")
}
