package share

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wneessen/go-mail"
	"github.com/stretchr/testify/require"
)

func TestParseChannelAndFormat(t *testing.T) {
	c, err := ParseChannel(" Telegram ")
	require.NoError(t, err)
	assert.Equal(t, ChannelTelegram, c)
	_, err = ParseChannel("fax")
	assert.ErrorIs(t, err, ErrUnknownChannel)

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	f, err = ParseFormat("DOCX")
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, f)
	_, err = ParseFormat("odt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDocumentName(t *testing.T) {
	name := DocumentName("Podcast Script", FormatPDF)
	assert.True(t, strings.HasPrefix(name, "podcast-script-"), name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)
	assert.NotEqual(t, name, DocumentName("Podcast Script", FormatPDF))

	assert.True(t, strings.HasPrefix(DocumentName("", FormatDOCX), "output-"))
}

func TestRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = strings.Repeat("x", 150)
	}
	text := strings.Join(lines, "\n")

	pdfPath, err := Render(FormatPDF, "Summary", text, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	docxPath, err := Render(FormatDOCX, "Summary", "first line\n\nsecond line", dir)
	require.NoError(t, err)
	data, err = os.ReadFile(docxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "docx is a zip archive")

	_, err = Render("odt", "Summary", text, dir)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSliceRunes(t *testing.T) {
	assert.Empty(t, sliceRunes("", 4))
	assert.Equal(t, []string{"abcd", "ef"}, sliceRunes("abcdef", 4))
	assert.Equal(t, []string{"مرحب", "ا"}, sliceRunes("مرحبا", 4))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}

type telegramCall struct {
	path    string
	chatID  string
	text    string
	caption string
	file    string
}

func newTelegramServer(t *testing.T, documentStatus int) (*httptest.Server, *[]telegramCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []telegramCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := telegramCall{
			path:    r.URL.Path,
			chatID:  r.FormValue("chat_id"),
			text:    r.FormValue("text"),
			caption: r.FormValue("caption"),
		}
		if _, header, err := r.FormFile("document"); err == nil {
			call.file = header.Filename
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()

		if strings.HasSuffix(r.URL.Path, "/sendDocument") && documentStatus != http.StatusOK {
			w.WriteHeader(documentStatus)
			w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestTelegram_Send(t *testing.T) {
	server, calls := newTelegramServer(t, http.StatusOK)
	sender := NewTelegram(Config{TelegramHost: server.URL, TelegramToken: "TOKEN", TelegramChatID: "42"})

	document := filepath.Join(t.TempDir(), "summary.pdf")
	require.NoError(t, os.WriteFile(document, []byte("%PDF-1.3"), 0644))

	body := strings.Repeat("a", 9000)
	report := sender.Send(context.Background(), Message{Title: "Summary", Body: body}, document)
	assert.True(t, report.OK)
	assert.Equal(t, "✅ Sent to Telegram with text + PDF!", report.Text)

	require.Len(t, *calls, 4)
	for _, c := range (*calls)[:3] {
		assert.Equal(t, "/botTOKEN/sendMessage", c.path)
		assert.Equal(t, "42", c.chatID)
	}
	assert.Equal(t, "📄 Summary\n\n"+strings.Repeat("a", 4000), (*calls)[0].text)
	assert.Equal(t, strings.Repeat("a", 4000), (*calls)[1].text)
	assert.Equal(t, strings.Repeat("a", 1000), (*calls)[2].text)

	doc := (*calls)[3]
	assert.Equal(t, "/botTOKEN/sendDocument", doc.path)
	assert.Equal(t, "📄 Summary (Full text also sent above)", doc.caption)
	assert.Equal(t, "summary.pdf", doc.file)
}

func TestTelegram_DocumentRejected(t *testing.T) {
	server, _ := newTelegramServer(t, http.StatusBadRequest)
	sender := NewTelegram(Config{TelegramHost: server.URL, TelegramToken: "TOKEN", TelegramChatID: "42"})

	document := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, os.WriteFile(document, []byte("%PDF-1.3"), 0644))

	report := sender.Send(context.Background(), Message{Title: "T", Body: "hi"}, document)
	assert.False(t, report.OK)
	assert.Equal(t, `❌ Telegram Error: {"ok":false,"description":"Bad Request: chat not found"}`, report.Text)
}

func TestTelegram_MissingCredentials(t *testing.T) {
	report := NewTelegram(Config{TelegramToken: "TOKEN"}).Send(context.Background(), Message{Body: "x"}, "")
	assert.False(t, report.OK)
	assert.Equal(t, "⚠️ Telegram credentials missing.", report.Text)
}

func TestEmail_Send(t *testing.T) {
	config := Config{EmailUser: "me@example.com", EmailPass: "secret", SMTPServer: "smtp.example.com", SMTPPort: 2525}
	config.Normalize()
	sender := newEmail(config)
	assert.Equal(t, "smtp.example.com", sender.host)
	assert.Equal(t, 2525, sender.port)

	var sent *mail.Msg
	sender.deliver = func(ctx context.Context, m *mail.Msg) error {
		sent = m
		return nil
	}

	document := filepath.Join(t.TempDir(), "summary.pdf")
	require.NoError(t, RenderPDF("hello\nworld", document))

	report := sender.Send(context.Background(), Message{Title: "Summary", Body: "hello\nworld", Recipient: "you@example.com"}, document)
	assert.True(t, report.OK)
	assert.Equal(t, "✅ Email sent with PDF!", report.Text)
	require.NotNil(t, sent)

	from, err := sent.GetSender(false)
	require.NoError(t, err)
	assert.Contains(t, from, "me@example.com")
	to, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"you@example.com"}, to)

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Summary")
	assert.Contains(t, raw, "multipart/mixed")
	assert.Contains(t, raw, "hello")
	assert.Contains(t, raw, "world")
	assert.Contains(t, raw, `filename="output.pdf"`)
	assert.Contains(t, raw, "application/pdf")
}

func TestEmail_Failures(t *testing.T) {
	report := NewEmail(Config{}).Send(context.Background(), Message{Recipient: "you@example.com"}, "")
	assert.Equal(t, "⚠️ Email credentials missing.", report.Text)

	config := Config{EmailUser: "me@example.com", EmailPass: "secret"}
	config.Normalize()
	sender := newEmail(config)
	assert.Equal(t, "smtp.gmail.com", sender.host)
	assert.Equal(t, 587, sender.port)

	report = sender.Send(context.Background(), Message{Title: "T"}, "")
	assert.False(t, report.OK)
	assert.Contains(t, report.Text, "recipient is required")

	sender.deliver = func(context.Context, *mail.Msg) error {
		return errors.New("535 Authentication failed")
	}
	document := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, os.WriteFile(document, []byte("%PDF-1.3"), 0644))
	report = sender.Send(context.Background(), Message{Title: "T", Recipient: "you@example.com"}, document)
	assert.Equal(t, "❌ Email Error: 535 Authentication failed", report.Text)

	report = sender.Send(context.Background(), Message{Title: "T", Recipient: "not an address"}, document)
	assert.False(t, report.OK)
	assert.True(t, strings.HasPrefix(report.Text, "❌ Email Error: "))

	report = sender.Send(context.Background(), Message{Title: "T", Recipient: "you@example.com"}, filepath.Join(t.TempDir(), "gone.pdf"))
	assert.False(t, report.OK)
}

type fakeSender struct {
	report    Report
	messages  []Message
	documents []string
}

func (f *fakeSender) Send(ctx context.Context, msg Message, document string) Report {
	f.messages = append(f.messages, msg)
	f.documents = append(f.documents, document)
	return f.report
}

func TestSharer_Share(t *testing.T) {
	telegram := &fakeSender{report: Report{OK: true, Text: "sent"}}
	email := &fakeSender{report: Report{Text: "⚠️ Email credentials missing."}}
	sharer := NewSharer(Config{WorkDir: t.TempDir()},
		WithSender(ChannelTelegram, telegram),
		WithSender(ChannelEmail, email),
	)

	reports := sharer.Share(context.Background(), Message{Body: "text"}, ChannelTelegram, ChannelEmail, "fax")
	require.Len(t, reports, 3)
	assert.Equal(t, Report{Channel: ChannelTelegram, OK: true, Text: "sent"}, reports[0])
	assert.Equal(t, Report{Channel: ChannelEmail, Text: "⚠️ Email credentials missing."}, reports[1])
	assert.Equal(t, Channel("fax"), reports[2].Channel)
	assert.False(t, reports[2].OK)

	require.Len(t, telegram.messages, 1)
	assert.Equal(t, "Output", telegram.messages[0].Title)
	assert.Equal(t, telegram.documents[0], email.documents[0], "document is rendered once")
	assert.FileExists(t, telegram.documents[0])

	assert.Nil(t, sharer.Share(context.Background(), Message{Body: "text"}))
}
