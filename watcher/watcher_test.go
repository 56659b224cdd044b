package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/natiq"
	"github.com/poiesic/natiq/ai/mock"
	"github.com/poiesic/natiq/config"
	"github.com/poiesic/natiq/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recorder) handled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, dir string, handler Handler) (cancel func() error) {
	t.Helper()
	w, err := New(dir, handler, WithSettleDelay(50*time.Millisecond))
	require.NoError(t, err)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
			return nil
		}
	}
}

func TestWatcher_HandlesSettledFileOnce(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	stop := startWatcher(t, dir, rec.handle)

	path := filepath.Join(dir, "talk.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	for range 5 {
		_, err := f.WriteString("some words ")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool { return len(rec.handled()) == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{path}, rec.handled())

	assert.NoError(t, stop())
}

func TestWatcher_SkipsHiddenAndDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	stop := startWatcher(t, dir, rec.handle)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video.mp4.part"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	visible := filepath.Join(dir, "visible.txt")
	require.NoError(t, os.WriteFile(visible, []byte("x"), 0644))

	require.Eventually(t, func() bool { return len(rec.handled()) == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{visible}, rec.handled())

	assert.NoError(t, stop())
}

func TestWatcher_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	w, err := New(dir, (&recorder{}).handle)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, dir, w.Dir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx))
}

func TestWatcher_RequiresHandler(t *testing.T) {
	_, err := New(t.TempDir(), nil)
	assert.Error(t, err)
}

type stubSender struct {
	mu       sync.Mutex
	messages []share.Message
}

func (s *stubSender) Send(ctx context.Context, msg share.Message, document string) share.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return share.Report{OK: true, Text: "✅ Email sent with PDF!"}
}

func newTestApp(t *testing.T, gen *mock.MockGenerator, opts ...natiq.AppOption) *natiq.App {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()
	cfg.Media.WorkDir = cfg.WorkDir

	provider := mock.NewMockProviderWithServices(gen, mock.NewMockPipelines(), mock.NewMockSynthesizer(cfg.WorkDir))
	app, err := natiq.NewApp(context.Background(), cfg, append([]natiq.AppOption{natiq.WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNewInbox(t *testing.T) {
	app := newTestApp(t, mock.NewMockGenerator())

	_, err := NewInbox(app, config.WatchConfig{Feature: "podcast"})
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	_, err = NewInbox(app, config.WatchConfig{Feature: "karaoke"})
	assert.Error(t, err)

	_, err = NewInbox(app, config.WatchConfig{Feature: "summarize", Channels: []string{"fax"}})
	assert.ErrorIs(t, err, share.ErrUnknownChannel)

	_, err = NewInbox(nil, config.WatchConfig{Feature: "summarize"})
	assert.Error(t, err)
}

func TestInbox_TextFile(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses("A short talk")
	email := &stubSender{}
	app := newTestApp(t, gen, natiq.WithShareOptions(share.WithSender(share.ChannelEmail, email)))

	inbox, err := NewInbox(app, config.WatchConfig{
		Feature:   "summarize",
		Channels:  []string{"email"},
		Recipient: "me@example.com",
	})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("A long talk about many things."), 0644))

	require.NoError(t, inbox.Handle(context.Background(), path))

	out, err := os.ReadFile(filepath.Join(dir, ProcessedDir, "notes.txt.summarize.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "📌 Summary:\n- A short talk")

	require.Len(t, email.messages, 1)
	assert.Equal(t, "Transcript & Summary", email.messages[0].Title)
	assert.Equal(t, "me@example.com", email.messages[0].Recipient)
	assert.Equal(t, string(out), email.messages[0].Body)
}

func TestInbox_TranslateUsesTarget(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses("مرحبا")
	app := newTestApp(t, gen)

	inbox, err := NewInbox(app, config.WatchConfig{Feature: "translate", Target: "ar"})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello"), 0644))
	require.NoError(t, inbox.Handle(context.Background(), path))

	out, err := os.ReadFile(filepath.Join(dir, ProcessedDir, "hello.txt.translate.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "🌍 Translation:\nمرحبا")
	require.Equal(t, 1, gen.CallCount())
	assert.Contains(t, gen.Requests()[0].System, "AR")
}

func TestInbox_SkipsOtherFiles(t *testing.T) {
	gen := mock.NewMockGenerator()
	app := newTestApp(t, gen)
	inbox, err := NewInbox(app, config.WatchConfig{Feature: "sentiment"})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, os.WriteFile(path, png, 0644))

	require.NoError(t, inbox.Handle(context.Background(), path))
	assert.Zero(t, gen.CallCount())
	assert.NoDirExists(t, filepath.Join(dir, ProcessedDir))
}

func TestInbox_WithWatcher(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses(`{"label": "NEGATIVE", "score": 0.8, "explanation": "grim"}`)
	app := newTestApp(t, gen)
	inbox, err := NewInbox(app, config.WatchConfig{Feature: "sentiment"})
	require.NoError(t, err)

	dir := t.TempDir()
	stop := startWatcher(t, dir, inbox.Handle)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.txt"), []byte("This was awful."), 0644))

	out := filepath.Join(dir, ProcessedDir, "review.txt.sentiment.txt")
	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.NoError(t, stop())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sentiment: NEGATIVE")
}
