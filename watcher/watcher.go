package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultSettleDelay   = 500 * time.Millisecond
	defaultMaxConcurrent = 2
)

// Handler processes one file that settled in the watched directory.
type Handler func(ctx context.Context, path string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSettleDelay sets how long a file must stay unchanged before it is
// handled.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithMaxConcurrent bounds how many files are handled at once.
func WithMaxConcurrent(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.maxConcurrent = n
		}
	}
}

// Watcher follows a directory and dispatches settled files to a Handler.
type Watcher struct {
	dir           string
	handler       Handler
	logger        *slog.Logger
	settle        time.Duration
	maxConcurrent int

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// New creates dir if needed and starts following it.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher: handler is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}

	w := &Watcher{
		dir:           dir,
		handler:       handler,
		logger:        slog.Default().With("component", "watcher"),
		settle:        defaultSettleDelay,
		maxConcurrent: defaultMaxConcurrent,
		pending:       make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}
	w.fsw = fsw
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run dispatches files until ctx is cancelled, then waits for running
// handlers and closes the underlying watcher. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("watching inbox", "dir", w.dir, "max_concurrent", w.maxConcurrent)

	sem := make(chan struct{}, w.maxConcurrent)
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.stop()
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.wants(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name, sem)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.stop()
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}

// wants skips hidden files, partial downloads and directories.
func (w *Watcher) wants(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".part") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// schedule (re)arms the settle timer of path.
func (w *Watcher) schedule(ctx context.Context, path string, sem chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.wg.Add(1)
		w.mu.Unlock()

		go func() {
			defer w.wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			w.dispatch(ctx, path)
		}()
	})
}

func (w *Watcher) dispatch(ctx context.Context, path string) {
	w.logger.Info("inbox file detected", "path", path)
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("failed to process inbox file", "path", path, "err", err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.logger.Info("waiting for inbox files in progress")
	w.wg.Wait()
	w.logger.Info("inbox watcher stopped")
}
