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

package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Channel names a delivery channel.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelEmail    Channel = "email"
)

// Channels lists every supported channel.
var Channels = []Channel{ChannelTelegram, ChannelEmail}

// ErrUnknownChannel indicates a channel name that is not supported.
var ErrUnknownChannel = errors.New("unknown share channel")

// ParseChannel maps a channel name to a Channel.
func ParseChannel(name string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(name))); c {
	case ChannelTelegram, ChannelEmail:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// Message is the content handed to every channel.
type Message struct {
	Title string
	Body  string

	// Recipient is the email address. Telegram uses the configured chat.
	Recipient string
}

// Report is the outcome of one channel delivery.
type Report struct {
	Channel Channel `json:"channel"`
	OK      bool    `json:"ok"`
	Text    string  `json:"text"`
}

// Sender delivers a message and its rendered document on one channel.
type Sender interface {
	Send(ctx context.Context, msg Message, document string) Report
}

// Config holds channel credentials and document settings.
type Config struct {
	TelegramToken  string
	TelegramChatID string

	// TelegramHost is the Bot API base URL.
	// Default: https://api.telegram.org
	TelegramHost string

	EmailUser string
	EmailPass string

	// Default: smtp.gmail.com
	SMTPServer string

	// Default: 587
	SMTPPort int

	// Format of the attached document. Default: pdf
	Format Format

	// WorkDir receives rendered documents.
	WorkDir string

	Timeout time.Duration
}

// Normalize fills in defaults for unset fields.
func (c *Config) Normalize() {
	if c.TelegramHost == "" {
		c.TelegramHost = "https://api.telegram.org"
	}
	if c.SMTPServer == "" {
		c.SMTPServer = "smtp.gmail.com"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.Format == "" {
		c.Format = FormatPDF
	}
	if c.WorkDir == "" {
		c.WorkDir = "temp"
	}
}

// Sharer fans a message out to the requested channels.
type Sharer struct {
	senders map[Channel]Sender
	format  Format
	workDir string
	logger  *slog.Logger
}

// SharerOption configures a Sharer.
type SharerOption func(*Sharer)

// WithSender replaces the sender of a channel.
func WithSender(channel Channel, sender Sender) SharerOption {
	return func(s *Sharer) {
		s.senders[channel] = sender
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SharerOption {
	return func(s *Sharer) {
		if logger != nil {
			s.logger = logger.With("component", "share")
		}
	}
}

// NewSharer creates a sharer with Telegram and email senders built from
// config.
func NewSharer(config Config, opts ...SharerOption) *Sharer {
	config.Normalize()
	s := &Sharer{
		senders: map[Channel]Sender{
			ChannelTelegram: newTelegram(config),
			ChannelEmail:    newEmail(config),
		},
		format:  config.Format,
		workDir: config.WorkDir,
		logger:  slog.Default().With("component", "share"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Share renders the message body once and sends it on each channel in
// order. It returns one report per channel.
func (s *Sharer) Share(ctx context.Context, msg Message, channels ...Channel) []Report {
	if len(channels) == 0 {
		return nil
	}
	if msg.Title == "" {
		msg.Title = "Output"
	}

	reports := make([]Report, 0, len(channels))
	document, err := Render(s.format, msg.Title, msg.Body, s.workDir)
	if err != nil {
		s.logger.Error("failed to render document", "format", s.format, "err", err)
		for _, c := range channels {
			reports = append(reports, Report{Channel: c, Text: fmt.Sprintf("❌ %s Error: %v", channelLabel(c), err)})
		}
		return reports
	}

	for _, c := range channels {
		sender, ok := s.senders[c]
		if !ok {
			reports = append(reports, Report{Channel: c, Text: fmt.Sprintf("❌ %v: %q", ErrUnknownChannel, c)})
			continue
		}
		report := sender.Send(ctx, msg, document)
		report.Channel = c
		s.logger.Info("shared output", "channel", c, "ok", report.OK, "title", msg.Title)
		reports = append(reports, report)
	}
	return reports
}

func channelLabel(c Channel) string {
	switch c {
	case ChannelTelegram:
		return "Telegram"
	case ChannelEmail:
		return "Email"
	}
	return string(c)
}
