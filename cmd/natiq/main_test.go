package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/natiq"
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/ai/mock"
	"github.com/poiesic/natiq/config"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/share"
	"github.com/poiesic/natiq/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type stubSender struct {
	messages []share.Message
}

func (s *stubSender) Send(ctx context.Context, msg share.Message, document string) share.Report {
	s.messages = append(s.messages, msg)
	return share.Report{OK: true, Text: "✅ Sent to Telegram with text + PDF!"}
}

// useMockApp makes commands open an App backed by the mock provider.
func useMockApp(t *testing.T, gen *mock.MockGenerator, opts ...natiq.AppOption) *mock.MockSynthesizer {
	t.Helper()
	synth := mock.NewMockSynthesizer(t.TempDir())
	provider := mock.NewMockProviderWithServices(gen, mock.NewMockPipelines(), synth)

	orig := openApp
	t.Cleanup(func() { openApp = orig })
	openApp = func(ctx context.Context, cfg *config.Config, appOpts ...natiq.AppOption) (*natiq.App, error) {
		appOpts = append(appOpts, natiq.WithProvider(provider))
		return natiq.NewApp(ctx, cfg, append(appOpts, opts...)...)
	}
	return synth
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	app := newCLI()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut

	dir := t.TempDir()
	base := []string{"natiq", "--env-file", filepath.Join(dir, "missing.env"), "--work-dir", dir}
	err = app.Run(append(base, args...))
	return out.String(), errOut.String(), err
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
				&cli.StringFlag{Name: "log-format", Value: "text"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("pretty format", func(t *testing.T) {
		require.NoError(t, newApp().Run([]string{"test", "--log-format", "pretty", "--log-level", "debug"}))
	})

	t.Run("invalid format", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-format", "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})
}

func TestCommandFlags(t *testing.T) {
	app := newCLI()

	find := func(name string) *cli.Command {
		for _, cmd := range app.Commands {
			if cmd.Name == name {
				return cmd
			}
		}
		return nil
	}

	for _, name := range []string{"serve", "watch", "diarize", "qa", "summarize", "translate", "sentiment", "podcast", "video", "models", "clean"} {
		assert.NotNil(t, find(name), "command %s", name)
	}

	t.Run("qa requires a question", func(t *testing.T) {
		var question *cli.StringFlag
		for _, flag := range find("qa").Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "question" {
				question = f
			}
		}
		require.NotNil(t, question)
		assert.True(t, question.Required)
	})

	t.Run("script defaults", func(t *testing.T) {
		for name, style := range map[string]string{"podcast": core.PodcastStyles[0], "video": core.VideoStyles[0]} {
			var styleFlag *cli.StringFlag
			var durationFlag *cli.IntFlag
			for _, flag := range find(name).Flags {
				switch f := flag.(type) {
				case *cli.StringFlag:
					if f.Name == "style" {
						styleFlag = f
					}
				case *cli.IntFlag:
					if f.Name == "duration" {
						durationFlag = f
					}
				}
			}
			require.NotNil(t, styleFlag)
			require.NotNil(t, durationFlag)
			assert.Equal(t, style, styleFlag.Value)
			assert.Equal(t, 5, durationFlag.Value)
		}
	})
}

func TestModelsCommand(t *testing.T) {
	out, _, err := run(t, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "* "+ai.DefaultModel)
	assert.Contains(t, out, "  openai/gpt-4o-mini")
	assert.Contains(t, out, "diarization and Q&A default: "+ai.DialogueModel)
}

func TestSummarizeCommand(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses("Short")
	useMockApp(t, gen)

	out, _, err := run(t, "summarize", "--text", "A long text about Go.", "--model", "openai/gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "- Short\n", out)
	require.Equal(t, 1, gen.CallCount())
	assert.Equal(t, "openai/gpt-4o-mini", gen.Requests()[0].Model)
}

func TestQACommand(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses("Paris.")
	useMockApp(t, gen)

	out, _, err := run(t, "qa", "--text", "The capital of France is Paris.", "-q", "Capital?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.\n", out)

	_, _, err = run(t, "qa", "--text", "context")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question")
}

func TestCommandErrors(t *testing.T) {
	useMockApp(t, mock.NewMockGenerator())

	_, _, err := run(t, "diarize", "--file", filepath.Join(t.TempDir(), "nope.mp3"))
	assert.ErrorIs(t, err, media.ErrFileNotFound)

	_, _, err = run(t, "sentiment", "--text", "fine", "--share", "fax")
	assert.ErrorIs(t, err, share.ErrUnknownChannel)

	_, _, err = run(t, "translate", "--text", "hello", "--target", "fr")
	assert.ErrorIs(t, err, core.ErrInvalidLanguage)

	_, _, err = run(t, "summarize")
	assert.ErrorIs(t, err, core.ErrMissingInput)

	_, _, err = run(t, "podcast", "--topic", "Go", "--duration", "90")
	assert.ErrorIs(t, err, core.ErrInvalidDuration)

	_, _, err = run(t, "watch", "--dir", t.TempDir(), "--feature", "podcast")
	assert.ErrorIs(t, err, watcher.ErrUnsupportedFeature)
}

func TestPodcastCommand_Speak(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses("Host: Welcome\nGuest: Thanks")
	synth := useMockApp(t, gen)

	out, errOut, err := run(t, "podcast", "--topic", "Go", "--duration", "1", "--speak")
	require.NoError(t, err)
	assert.Contains(t, out, "🎙️ New Podcast Script Generated!")
	assert.Contains(t, out, "Host: Welcome\nGuest: Thanks")
	assert.Contains(t, errOut, "audio written to ")
	assert.Equal(t, []string{"Host: Welcome Guest: Thanks"}, synth.Texts())
	assert.Equal(t, []string{"en"}, synth.Langs())
}

func TestSentimentCommand_Share(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses(`{"label": "POSITIVE", "score": 0.75, "explanation": "warm"}`)
	telegram := &stubSender{}
	useMockApp(t, gen, natiq.WithShareOptions(share.WithSender(share.ChannelTelegram, telegram)))

	out, errOut, err := run(t, "sentiment", "--text", "Lovely day", "--share", "telegram")
	require.NoError(t, err)
	assert.Contains(t, out, "Sentiment: POSITIVE")
	assert.Contains(t, out, "Confidence: 75.0%")
	assert.Contains(t, errOut, "✅ Sent to Telegram with text + PDF!")

	require.Len(t, telegram.messages, 1)
	assert.Equal(t, "Sentiment Analysis Result", telegram.messages[0].Title)
	assert.Equal(t, strings.TrimSuffix(out, "\n"), telegram.messages[0].Body)
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upload.mp3"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "transcribe-123"), 0755))

	app := newCLI()
	var out bytes.Buffer
	app.Writer = &out
	base := []string{"natiq", "--env-file", filepath.Join(dir, "missing.env"), "--work-dir", dir}

	require.NoError(t, app.Run(append(base, "clean", "--dry-run")))
	assert.Contains(t, out.String(), filepath.Join(dir, "upload.mp3"))
	assert.FileExists(t, filepath.Join(dir, "upload.mp3"))

	out.Reset()
	require.NoError(t, app.Run(append(base, "clean")))
	assert.Contains(t, out.String(), "removed 2 entries")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
