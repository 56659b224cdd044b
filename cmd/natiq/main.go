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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/poiesic/natiq"
	"github.com/poiesic/natiq/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var openApp = natiq.NewApp

func newCLI() *cli.App {
	return &cli.App{
		Name:  "natiq",
		Usage: "Transcribe, analyze and generate spoken content with LLMs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"NATIQ_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with API keys and channel credentials",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "work-dir",
				Usage: "Directory for downloads, audio and documents (overrides the config)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, pretty)",
				Value: "text",
			},
		},
		Before:   setupLogger,
		Commands: commands(),
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	var handler slog.Handler
	switch format := strings.ToLower(c.String("log-format")); format {
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		})
	default:
		return fmt.Errorf("invalid log format %q: must be text or pretty", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads the configuration named by the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("work-dir"); dir != "" {
		cfg.WorkDir = dir
		cfg.Media.WorkDir = dir
	}
	return cfg, nil
}

// withApp loads the configuration, opens the application and hands both
// to fn. The context is cancelled on SIGINT and SIGTERM.
func withApp(c *cli.Context, fn func(ctx context.Context, app *natiq.App) error, opts ...natiq.AppOption) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to start natiq: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("failed to close application", "err", err)
		}
	}()
	return fn(ctx, app)
}
