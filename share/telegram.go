package share

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// telegramMessageLength is the slice size for sendMessage; the Bot API
// limit is 4096 characters.
const telegramMessageLength = 4000

// Telegram sends messages and documents through the Telegram Bot API.
type Telegram struct {
	client *resty.Client
	chatID string
	ready  bool
	logger *slog.Logger
}

var _ Sender = (*Telegram)(nil)

func newTelegram(config Config) *Telegram {
	client := resty.New().SetBaseURL(fmt.Sprintf("%s/bot%s", config.TelegramHost, config.TelegramToken))
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}
	return &Telegram{
		client: client,
		chatID: config.TelegramChatID,
		ready:  config.TelegramToken != "" && config.TelegramChatID != "",
		logger: slog.Default().With("component", "telegram"),
	}
}

// NewTelegram creates a Telegram sender from config.
func NewTelegram(config Config) Sender {
	config.Normalize()
	return newTelegram(config)
}

// Send posts the body in 4000-character slices, the first one titled, and
// then uploads the document with a caption.
func (t *Telegram) Send(ctx context.Context, msg Message, document string) Report {
	if !t.ready {
		return Report{Text: "⚠️ Telegram credentials missing."}
	}

	for i, slice := range sliceRunes(msg.Body, telegramMessageLength) {
		text := slice
		if i == 0 {
			text = fmt.Sprintf("📄 %s\n\n%s", msg.Title, slice)
		}
		resp, err := t.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{"chat_id": t.chatID, "text": text}).
			Post("/sendMessage")
		if err != nil {
			return Report{Text: fmt.Sprintf("❌ Telegram Error: %v", err)}
		}
		if resp.StatusCode() != http.StatusOK {
			t.logger.Warn("sendMessage rejected", "status", resp.StatusCode(), "slice", i+1)
		}
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"caption": fmt.Sprintf("📄 %s (Full text also sent above)", msg.Title),
		}).
		SetFile("document", document).
		Post("/sendDocument")
	if err != nil {
		return Report{Text: fmt.Sprintf("❌ Telegram Error: %v", err)}
	}
	if resp.StatusCode() != http.StatusOK {
		return Report{Text: "❌ Telegram Error: " + resp.String()}
	}
	return Report{OK: true, Text: "✅ Sent to Telegram with text + PDF!"}
}

// sliceRunes cuts s into consecutive pieces of at most n characters.
func sliceRunes(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for i := 0; i < len(runes); i += n {
		out = append(out, string(runes[i:min(i+n, len(runes))]))
	}
	return out
}
