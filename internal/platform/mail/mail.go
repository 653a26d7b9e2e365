// Package mail sends transactional email (verification links).
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"

	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/logging"
)

// Message is a single email with a plain text and an optional HTML body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an SMTP relay, upgrading to TLS when offered.
type SMTPSender struct {
	cfg     config.SMTPSettings
	timeout time.Duration
}

// NewSMTPSender returns a sender for the configured relay.
func NewSMTPSender(cfg config.SMTPSettings) *SMTPSender {
	return &SMTPSender{cfg: cfg, timeout: 30 * time.Second}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(s.build(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) build(msg Message) []byte {
	var b bytes.Buffer
	fromName := s.cfg.FromName
	if fromName == "" {
		fromName = "Internship Portal"
	}
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", fromName), s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.cfg.Host)
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(crlf(msg.Text))
		return b.Bytes()
	}

	boundary := "b_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, crlf(msg.Text))
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, crlf(msg.HTML))
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

// LogSender only logs messages. Used when no SMTP relay is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "email not sent: SMTP disabled",
		"to", logging.MaskEmail(msg.To),
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

var (
	verifyText = texttemplate.Must(texttemplate.New("verify").Parse(
		`Hello {{.Name}},

Please confirm your email address by opening the link below:

{{.Link}}

The link expires in {{.TTL}}. If you did not create an account, ignore this email.
`))
	verifyHTML = htmltemplate.Must(htmltemplate.New("verify").Parse(
		`<p>Hello {{.Name}},</p>
<p>Please confirm your email address:</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>The link expires in {{.TTL}}. If you did not create an account, ignore this email.</p>
`))
)

// VerificationMessage renders the email verification message.
func VerificationMessage(to, name, link string, ttl time.Duration) (Message, error) {
	data := struct {
		Name, Link, TTL string
	}{name, link, ttl.String()}

	var text, html bytes.Buffer
	if err := verifyText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render verification text: %w", err)
	}
	if err := verifyHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render verification html: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
