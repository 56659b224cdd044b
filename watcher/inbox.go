package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/poiesic/natiq/config"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/pipeline"
	"github.com/poiesic/natiq/share"
)

// ProcessedDir is the folder, inside the inbox, that receives share texts.
const ProcessedDir = "processed"

// ErrUnsupportedFeature indicates a feature that needs more input than a
// dropped file provides.
var ErrUnsupportedFeature = errors.New("feature cannot run from the inbox")

// InboxFeatures lists the features an inbox can run.
var InboxFeatures = []core.Feature{
	core.FeatureDiarization,
	core.FeatureSummarize,
	core.FeatureTranslate,
	core.FeatureSentiment,
}

// App is the part of natiq.App the inbox drives.
type App interface {
	Run(ctx context.Context, sid core.SessionID, fn func(ctx context.Context, svc *pipeline.Service) error) error
	Share(ctx context.Context, sid core.SessionID, feature core.Feature, recipient string, channels ...share.Channel) ([]share.Report, error)
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithInboxLogger sets the logger.
func WithInboxLogger(logger *slog.Logger) InboxOption {
	return func(in *Inbox) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// Inbox runs one feature on every file handed to it.
type Inbox struct {
	app       App
	feature   core.Feature
	language  string
	target    string
	recipient string
	channels  []share.Channel
	logger    *slog.Logger
}

// NewInbox builds an Inbox from the watch settings.
func NewInbox(app App, cfg config.WatchConfig, opts ...InboxOption) (*Inbox, error) {
	if app == nil {
		return nil, errors.New("watcher: app is required")
	}
	feature, err := core.ParseFeature(cfg.Feature)
	if err != nil {
		return nil, err
	}
	supported := false
	for _, f := range InboxFeatures {
		if f == feature {
			supported = true
		}
	}
	if !supported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFeature, feature)
	}
	target := cfg.Target
	if target == "" {
		target = "en"
	}

	in := &Inbox{
		app:       app,
		feature:   feature,
		language:  cfg.Language,
		target:    target,
		recipient: cfg.Recipient,
		logger:    slog.Default().With("component", "inbox"),
	}
	for _, name := range cfg.Channels {
		channel, err := share.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		in.channels = append(in.channels, channel)
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// Handle processes one inbox file. Files that are neither media nor text
// are skipped without error.
func (in *Inbox) Handle(ctx context.Context, path string) error {
	src := pipeline.Source{Language: in.language}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	switch {
	case media.IsMediaType(mtype):
		src.File = path
	case mtype.Is("text/plain") || hasParent(mtype, "text/plain"):
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		src.Text = string(data)
	default:
		in.logger.Debug("skipping inbox file", "path", path, "mime", mtype.String())
		return nil
	}

	sid := core.NewSessionID()
	var text string
	err = in.app.Run(ctx, sid, func(ctx context.Context, svc *pipeline.Service) error {
		var err error
		text, err = in.process(ctx, svc, sid, src)
		return err
	})
	if err != nil {
		return err
	}

	out, err := in.save(path, text)
	if err != nil {
		return err
	}
	in.logger.Info("inbox file processed", "path", path, "feature", in.feature, "output", out)

	if len(in.channels) > 0 {
		reports, err := in.app.Share(ctx, sid, in.feature, in.recipient, in.channels...)
		if err != nil {
			return err
		}
		for _, r := range reports {
			in.logger.Info("shared inbox result", "channel", r.Channel, "ok", r.OK, "report", r.Text)
		}
	}

	return in.app.Run(ctx, sid, func(ctx context.Context, svc *pipeline.Service) error {
		return svc.Invalidate(ctx, sid, "")
	})
}

func (in *Inbox) process(ctx context.Context, svc *pipeline.Service, sid core.SessionID, src pipeline.Source) (string, error) {
	switch in.feature {
	case core.FeatureDiarization:
		res, err := svc.Diarize(ctx, sid, pipeline.DiarizeRequest{Source: src})
		if err != nil {
			return "", err
		}
		return res.Share, nil
	case core.FeatureSummarize:
		res, err := svc.Summarize(ctx, sid, pipeline.SummarizeRequest{Source: src})
		if err != nil {
			return "", err
		}
		return res.Share, nil
	case core.FeatureTranslate:
		res, err := svc.Translate(ctx, sid, pipeline.TranslateRequest{Source: src, Target: in.target})
		if err != nil {
			return "", err
		}
		return res.Share, nil
	case core.FeatureSentiment:
		res, err := svc.AnalyzeSentiment(ctx, sid, pipeline.SentimentRequest{Source: src})
		if err != nil {
			return "", err
		}
		return res.Share, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFeature, in.feature)
}

// save writes the share text to processed/<file>.<feature>.txt beside the
// source file.
func (in *Inbox) save(path, text string) (string, error) {
	dir := filepath.Join(filepath.Dir(path), ProcessedDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	out := filepath.Join(dir, filepath.Base(path)+"."+string(in.feature)+".txt")
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		return "", err
	}
	return out, nil
}

func hasParent(mtype *mimetype.MIME, name string) bool {
	for m := mtype.Parent(); m != nil; m = m.Parent() {
		if m.Is(name) {
			return true
		}
	}
	return false
}
