package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/natiq"
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/pipeline"
	"github.com/poiesic/natiq/server"
	"github.com/poiesic/natiq/share"
	"github.com/poiesic/natiq/watcher"
	"github.com/urfave/cli/v2"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the web UI and JSON API",
			Action: serveCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "listen",
					Usage: "Address to listen on (overrides the config)",
				},
			},
		},
		{
			Name:   "watch",
			Usage:  "Process media and text files dropped into an inbox folder",
			Action: watchCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "dir", Usage: "Inbox directory (overrides the config)"},
				&cli.StringFlag{Name: "feature", Usage: "Feature to run: diarization, summarize, translate or sentiment"},
				&cli.StringFlag{Name: "language", Usage: "Transcription language: auto, en or ar"},
				&cli.StringFlag{Name: "target", Usage: "Translation target: en or ar"},
				&cli.StringSliceFlag{Name: "share", Usage: "Channels to share results to (telegram, email)"},
				&cli.StringFlag{Name: "recipient", Usage: "Email recipient"},
			},
		},
		{
			Name:   "diarize",
			Usage:  "Split a transcript into speaker turns",
			Action: diarizeCommand,
			Flags:  sourceFlags(),
		},
		{
			Name:   "qa",
			Usage:  "Answer a question about a transcript",
			Action: qaCommand,
			Flags: append(sourceFlags(), &cli.StringFlag{
				Name:     "question",
				Aliases:  []string{"q"},
				Usage:    "Question to ask",
				Required: true,
			}),
		},
		{
			Name:   "summarize",
			Usage:  "Summarize a transcript into bullet points",
			Action: summarizeCommand,
			Flags: append(sourceFlags(),
				&cli.StringFlag{Name: "summary-language", Usage: "Language of the text: auto, en or ar"},
				&cli.StringFlag{Name: "mode", Usage: "llm or classic", Value: string(pipeline.ModeLLM)},
			),
		},
		{
			Name:   "translate",
			Usage:  "Translate a transcript",
			Action: translateCommand,
			Flags: append(sourceFlags(),
				&cli.StringFlag{Name: "target", Usage: "Target language: en or ar", Value: "en"},
				&cli.StringFlag{Name: "mode", Usage: "llm or classic", Value: string(pipeline.ModeLLM)},
			),
		},
		{
			Name:   "sentiment",
			Usage:  "Label the sentiment of a transcript",
			Action: sentimentCommand,
			Flags:  sourceFlags(),
		},
		{
			Name:   "podcast",
			Usage:  "Generate a Host and Guest podcast script",
			Action: podcastCommand,
			Flags:  scriptFlags(core.PodcastStyles[0]),
		},
		{
			Name:   "video",
			Usage:  "Generate a narrated video script",
			Action: videoCommand,
			Flags:  scriptFlags(core.VideoStyles[0]),
		},
		{
			Name:   "models",
			Usage:  "List the selectable LLM models",
			Action: modelsCommand,
		},
		{
			Name:   "clean",
			Usage:  "Remove uploads, downloads, audio and documents from the work directory",
			Action: cleanCommand,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "dry-run", Usage: "List what would be removed"},
			},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "LLM model to use"},
		&cli.StringSliceFlag{Name: "share", Usage: "Channels to share the result to (telegram, email)"},
		&cli.StringFlag{Name: "recipient", Usage: "Email recipient"},
	}
}

func sourceFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local audio or video file"},
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Media URL to download"},
		&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Text to process instead of a recording"},
		&cli.StringFlag{Name: "language", Usage: "Transcription language: auto, en or ar", Value: "auto"},
	}, outputFlags()...)
}

func scriptFlags(style string) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "topic", Usage: "Topic of the script", Required: true},
		&cli.StringFlag{Name: "style", Usage: "Style of the script", Value: style},
		&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Length in minutes (1-60)", Value: 5},
		&cli.BoolFlag{Name: "speak", Usage: "Render the script to an MP3 file"},
		&cli.StringFlag{Name: "speak-language", Usage: "Narration language: en or ar", Value: "en"},
	}, outputFlags()...)
}

// source builds a pipeline source from the flags. A local file is checked
// before any model is called.
func source(c *cli.Context) (pipeline.Source, error) {
	src := pipeline.Source{
		File:     c.String("file"),
		URL:      c.String("url"),
		Text:     c.String("text"),
		Language: c.String("language"),
	}
	if src.File != "" && strings.TrimSpace(src.Text) == "" {
		if _, err := os.Stat(src.File); err != nil {
			return src, fmt.Errorf("%w: %s", media.ErrFileNotFound, src.File)
		}
	}
	return src, nil
}

// runFeature runs fn in a fresh session, prints the share text and shares
// it to the requested channels.
func runFeature(c *cli.Context, feature core.Feature, fn func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error)) error {
	channels, err := parseChannels(c.StringSlice("share"))
	if err != nil {
		return err
	}
	return withApp(c, func(ctx context.Context, app *natiq.App) error {
		sid := core.NewSessionID()
		var out string
		err := app.Run(ctx, sid, func(ctx context.Context, svc *pipeline.Service) error {
			var err error
			out, err = fn(ctx, svc, sid)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, out)

		if len(channels) == 0 {
			return nil
		}
		reports, err := app.Share(ctx, sid, feature, c.String("recipient"), channels...)
		if err != nil {
			return err
		}
		for _, r := range reports {
			fmt.Fprintln(c.App.ErrWriter, r.Text)
		}
		return nil
	}, natiq.WithProgress(c.App.ErrWriter))
}

func parseChannels(names []string) ([]share.Channel, error) {
	var channels []share.Channel
	for _, name := range names {
		channel, err := share.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, nil
}

func serveCommand(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *natiq.App) error {
		srv, err := server.New(app)
		if err != nil {
			return err
		}
		addr := c.String("listen")
		if addr == "" {
			addr = app.Config().Listen
		}
		return srv.Run(ctx, addr)
	})
}

func watchCommand(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *natiq.App) error {
		cfg := app.Config().Watch
		if c.IsSet("dir") {
			cfg.Dir = c.String("dir")
		}
		if c.IsSet("feature") {
			cfg.Feature = c.String("feature")
		}
		if c.IsSet("language") {
			cfg.Language = c.String("language")
		}
		if c.IsSet("target") {
			cfg.Target = c.String("target")
		}
		if c.IsSet("share") {
			cfg.Channels = c.StringSlice("share")
		}
		if c.IsSet("recipient") {
			cfg.Recipient = c.String("recipient")
		}

		inbox, err := watcher.NewInbox(app, cfg)
		if err != nil {
			return err
		}
		w, err := watcher.New(cfg.Dir, inbox.Handle, watcher.WithMaxConcurrent(app.Config().Runner.PoolSize))
		if err != nil {
			return err
		}
		return w.Run(ctx)
	})
}

func diarizeCommand(c *cli.Context) error {
	src, err := source(c)
	if err != nil {
		return err
	}
	return runFeature(c, core.FeatureDiarization, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.Diarize(ctx, sid, pipeline.DiarizeRequest{Source: src, Model: c.String("model")})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(c.App.ErrWriter, "transcribed in %s, processed in %s\n", res.TranscribeTime, res.ProcessTime)
		return res.Share, nil
	})
}

func qaCommand(c *cli.Context) error {
	src, err := source(c)
	if err != nil {
		return err
	}
	return runFeature(c, core.FeatureQA, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.Ask(ctx, sid, pipeline.QARequest{Source: src, Question: c.String("question"), Model: c.String("model")})
		if err != nil {
			return "", err
		}
		return res.Answer, nil
	})
}

func summarizeCommand(c *cli.Context) error {
	src, err := source(c)
	if err != nil {
		return err
	}
	req := pipeline.SummarizeRequest{
		Source:   src,
		Language: c.String("summary-language"),
		Mode:     pipeline.Mode(c.String("mode")),
		Model:    c.String("model"),
	}
	return runFeature(c, core.FeatureSummarize, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.Summarize(ctx, sid, req)
		if err != nil {
			return "", err
		}
		return res.Summary, nil
	})
}

func translateCommand(c *cli.Context) error {
	src, err := source(c)
	if err != nil {
		return err
	}
	req := pipeline.TranslateRequest{
		Source: src,
		Target: c.String("target"),
		Mode:   pipeline.Mode(c.String("mode")),
		Model:  c.String("model"),
	}
	return runFeature(c, core.FeatureTranslate, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.Translate(ctx, sid, req)
		if err != nil {
			return "", err
		}
		return res.Translation, nil
	})
}

func sentimentCommand(c *cli.Context) error {
	src, err := source(c)
	if err != nil {
		return err
	}
	return runFeature(c, core.FeatureSentiment, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.AnalyzeSentiment(ctx, sid, pipeline.SentimentRequest{Source: src, Model: c.String("model")})
		if err != nil {
			return "", err
		}
		return res.Share, nil
	})
}

func podcastCommand(c *cli.Context) error {
	req := pipeline.PodcastRequest{
		Topic:    c.String("topic"),
		Style:    c.String("style"),
		Duration: c.Int("duration"),
		Model:    c.String("model"),
	}
	return runFeature(c, core.FeaturePodcast, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.GeneratePodcast(ctx, sid, req)
		if err != nil {
			return "", err
		}
		if err := speak(ctx, c, svc, sid, core.FeaturePodcast); err != nil {
			return "", err
		}
		return res.Share, nil
	})
}

func videoCommand(c *cli.Context) error {
	req := pipeline.VideoRequest{
		Topic:    c.String("topic"),
		Style:    c.String("style"),
		Duration: c.Int("duration"),
		Model:    c.String("model"),
	}
	return runFeature(c, core.FeatureVideo, func(ctx context.Context, svc *pipeline.Service, sid core.SessionID) (string, error) {
		res, err := svc.GenerateVideoScript(ctx, sid, req)
		if err != nil {
			return "", err
		}
		if err := speak(ctx, c, svc, sid, core.FeatureVideo); err != nil {
			return "", err
		}
		return res.Share, nil
	})
}

func speak(ctx context.Context, c *cli.Context, svc *pipeline.Service, sid core.SessionID, feature core.Feature) error {
	if !c.Bool("speak") {
		return nil
	}
	path, err := svc.Speech(ctx, sid, feature, c.String("speak-language"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "audio written to %s\n", path)
	return nil
}

func modelsCommand(c *cli.Context) error {
	for _, model := range ai.Models {
		marker := "  "
		if model == ai.DefaultModel {
			marker = "* "
		}
		fmt.Fprintln(c.App.Writer, marker+model)
	}
	fmt.Fprintf(c.App.Writer, "\ndiarization and Q&A default: %s\n", ai.DialogueModel)
	return nil
}

func cleanCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if dir == cwd || dir == filepath.Dir(dir) {
		return fmt.Errorf("refusing to clean %s: set a dedicated work directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if c.Bool("dry-run") {
			fmt.Fprintln(c.App.Writer, path)
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	if !c.Bool("dry-run") {
		fmt.Fprintf(c.App.Writer, "removed %d entries from %s\n", len(entries), dir)
	}
	return nil
}
