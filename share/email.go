package share

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/wneessen/go-mail"
)

// deliverFunc hands a composed message to the SMTP server.
type deliverFunc func(ctx context.Context, m *mail.Msg) error

// Email sends messages over SMTP, upgrading the connection with STARTTLS
// before authenticating.
type Email struct {
	user    string
	pass    string
	host    string
	port    int
	deliver deliverFunc
	logger  *slog.Logger
}

var _ Sender = (*Email)(nil)

func newEmail(config Config) *Email {
	e := &Email{
		user:   config.EmailUser,
		pass:   config.EmailPass,
		host:   config.SMTPServer,
		port:   config.SMTPPort,
		logger: slog.Default().With("component", "email"),
	}
	e.deliver = e.dialAndSend
	return e
}

// NewEmail creates an email sender from config.
func NewEmail(config Config) Sender {
	config.Normalize()
	return newEmail(config)
}

// Send mails the body as plain text with the document attached.
func (e *Email) Send(ctx context.Context, msg Message, document string) Report {
	if e.user == "" || e.pass == "" {
		return Report{Text: "⚠️ Email credentials missing."}
	}
	if msg.Recipient == "" {
		return Report{Text: "❌ Email Error: recipient is required"}
	}
	if err := ctx.Err(); err != nil {
		return Report{Text: fmt.Sprintf("❌ Email Error: %v", err)}
	}

	m, err := composeMail(e.user, msg, document)
	if err != nil {
		return Report{Text: fmt.Sprintf("❌ Email Error: %v", err)}
	}
	if err := e.deliver(ctx, m); err != nil {
		e.logger.Warn("failed to send email", "server", e.host, "port", e.port, "err", err)
		return Report{Text: fmt.Sprintf("❌ Email Error: %v", err)}
	}
	return Report{OK: true, Text: "✅ Email sent with PDF!"}
}

func (e *Email) dialAndSend(ctx context.Context, m *mail.Msg) error {
	client, err := mail.NewClient(e.host,
		mail.WithPort(e.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.user),
		mail.WithPassword(e.pass),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}

// composeMail builds a message with a text part and the document attached
// as "output" plus its extension.
func composeMail(from string, msg Message, document string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(msg.Recipient); err != nil {
		return nil, err
	}
	m.Subject(msg.Title)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	mtype, err := mimetype.DetectFile(document)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(document)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := "output" + filepath.Ext(document)
	if err := m.AttachReader(name, f, mail.WithFileContentType(mail.ContentType(mtype.String()))); err != nil {
		return nil, err
	}
	return m, nil
}
