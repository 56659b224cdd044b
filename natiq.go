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

package natiq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/ai/gemini"
	"github.com/poiesic/natiq/ai/openai"
	"github.com/poiesic/natiq/config"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/pipeline"
	"github.com/poiesic/natiq/share"
	"github.com/poiesic/natiq/storage"
	"github.com/poiesic/natiq/storage/badger"
)

// App holds every long-lived collaborator: the AI provider, the media
// tools, the session store, the worker pool and the sharing channels.
// It is built once per process and shared by the web UI, the CLI commands
// and the inbox watcher.
type App struct {
	config   *config.Config
	store    storage.SessionStore
	provider ai.AIProvider
	acquirer media.Acquirer
	service  *pipeline.Service
	runner   *pipeline.Runner
	sharer   *share.Sharer
	logger   *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	provider     ai.AIProvider
	mediaOptions []media.Option
	shareOptions []share.SharerOption
	progress     io.Writer
	logger       *slog.Logger
}

// WithProvider uses provider instead of building one from the configuration.
func WithProvider(provider ai.AIProvider) AppOption {
	return func(o *appOptions) {
		o.provider = provider
	}
}

// WithMediaOptions passes options to the media acquirer and transcriber.
func WithMediaOptions(opts ...media.Option) AppOption {
	return func(o *appOptions) {
		o.mediaOptions = append(o.mediaOptions, opts...)
	}
}

// WithShareOptions passes options to the sharer.
func WithShareOptions(opts ...share.SharerOption) AppOption {
	return func(o *appOptions) {
		o.shareOptions = append(o.shareOptions, opts...)
	}
}

// WithProgress reports per-part progress of every feature to w.
func WithProgress(w io.Writer) AppOption {
	return func(o *appOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// NewApp validates cfg and builds the application.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &appOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "app")

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(ctx, cfg.AIConfig())
		if err != nil {
			return nil, err
		}
	}
	if cfg.Pipelines.Preload {
		if err := provider.Pipelines().Load(ctx); err != nil {
			provider.Close()
			return nil, fmt.Errorf("load pipelines: %w", err)
		}
	}

	mediaOpts := append([]media.Option{media.WithLogger(options.logger)}, options.mediaOptions...)
	acquirer, err := media.NewAcquirer(cfg.Media, mediaOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}
	transcriber, err := media.NewTranscriber(cfg.Media, mediaOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	store, err := badger.OpenSessionStore(cfg.Session.Path, cfg.Session.TTL)
	if err != nil {
		provider.Close()
		return nil, err
	}

	serviceOpts := []pipeline.Option{
		pipeline.WithMedia(acquirer, transcriber),
		pipeline.WithStore(store),
		pipeline.WithLogger(options.logger),
	}
	if options.progress != nil {
		serviceOpts = append(serviceOpts, pipeline.WithProgressWriter(options.progress))
	}
	service, err := pipeline.NewService(provider, serviceOpts...)
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	runner, err := pipeline.NewRunner(
		pipeline.WithPoolSize(cfg.Runner.PoolSize),
		pipeline.WithRunnerLogger(options.logger),
	)
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	shareOpts := append([]share.SharerOption{share.WithLogger(options.logger)}, options.shareOptions...)
	sharer := share.NewSharer(cfg.ShareConfig(), shareOpts...)

	logger.Info("application ready",
		"backend", cfg.LLM.Backend,
		"work_dir", cfg.WorkDir,
		"session_store", sessionStoreKind(cfg.Session.Path),
		"pool_size", cfg.Runner.PoolSize)

	return &App{
		config:   cfg,
		store:    store,
		provider: provider,
		acquirer: acquirer,
		service:  service,
		runner:   runner,
		sharer:   sharer,
		logger:   logger,
	}, nil
}

// NewProvider builds the AI provider for the configured backend.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	switch config.Backend {
	case ai.BackendGemini:
		return gemini.NewProvider(ctx, config)
	case ai.BackendOpenRouter, "":
		return openai.NewProvider(config)
	}
	return nil, fmt.Errorf("unknown AI backend %q", config.Backend)
}

func sessionStoreKind(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}

// Close stops the worker pool and releases the store and the provider.
func (a *App) Close() error {
	a.runner.Release()

	var errs []error
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing session store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Service() *pipeline.Service {
	return a.service
}

func (a *App) Runner() *pipeline.Runner {
	return a.runner
}

func (a *App) Acquirer() media.Acquirer {
	return a.acquirer
}

func (a *App) Sharer() *share.Sharer {
	return a.sharer
}

// Run executes fn for a session on the worker pool.
func (a *App) Run(ctx context.Context, sid core.SessionID, fn func(ctx context.Context, svc *pipeline.Service) error) error {
	return a.runner.Do(ctx, sid, func(ctx context.Context) error {
		return fn(ctx, a.service)
	})
}

// Share sends the session's last share text of feature to channels.
func (a *App) Share(ctx context.Context, sid core.SessionID, feature core.Feature, recipient string, channels ...share.Channel) ([]share.Report, error) {
	text, err := a.service.ShareText(ctx, sid, feature)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s output to share", core.ErrMissingInput, feature)
		}
		return nil, err
	}
	msg := share.Message{Title: pipeline.ShareTitle(feature), Body: text, Recipient: recipient}
	return a.sharer.Share(ctx, msg, channels...), nil
}
