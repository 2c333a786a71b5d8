package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrunity/internal/apperr"
)

type smtpMailer struct {
	host     string
	port     int
	user     string
	password string
	useTLS   bool
}

func (s *smtpMailer) Name() string {
	return "smtp"
}

func (s *smtpMailer) Send(ctx context.Context, msg Message) (Result, error) {
	if strings.TrimSpace(msg.To) == "" {
		return Result{}, ErrNoRecipient
	}
	if s.host == "" {
		return Result{}, ErrMissingCredentials
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	if err := s.deliver(ctx, msg, messageID); err != nil {
		return Result{}, apperr.External(s.Name(), err)
	}
	return Result{Provider: s.Name(), MessageID: messageID, Status: StatusSent}, nil
}

// Check connects and authenticates without sending anything.
func (s *smtpMailer) Check(ctx context.Context) error {
	if s.host == "" {
		return ErrMissingCredentials
	}
	client, closeConn, err := s.connect(ctx)
	if err != nil {
		return apperr.External(s.Name(), err)
	}
	defer closeConn()
	if err := client.Quit(); err != nil {
		return apperr.External(s.Name(), err)
	}
	return nil
}

// connect dials the relay and runs STARTTLS and AUTH as configured.
func (s *smtpMailer) connect(ctx context.Context) (*smtp.Client, func(), error) {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	closeConn := func() {
		client.Close()
		conn.Close()
	}
	if s.useTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			closeConn()
			return nil, nil, err
		}
	}
	if s.user != "" {
		if err := client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
			closeConn()
			return nil, nil, err
		}
	}
	return client, closeConn, nil
}

func (s *smtpMailer) deliver(ctx context.Context, msg Message, messageID string) error {
	client, closeConn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer closeConn()

	if err := client.Mail(msg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(msg, messageID)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage renders a multipart/alternative message with the text part
// first so clients prefer HTML.
func buildMessage(msg Message, messageID string) []byte {
	boundary := "hrunity-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	headers := []string{
		fmt.Sprintf("From: %s", formatAddress(msg.FromName, msg.From)),
		fmt.Sprintf("To: %s", formatAddress(msg.ToName, msg.To)),
		fmt.Sprintf("Subject: %s", headerValue(msg.Subject)),
		fmt.Sprintf("Message-ID: %s", messageID),
		fmt.Sprintf("Date: %s", time.Now().UTC().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
	}
	if msg.ReplyTo != "" {
		headers = append(headers, fmt.Sprintf("Reply-To: %s", formatAddress("", msg.ReplyTo)))
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n"))
	b.WriteString("\r\n\r\n")
	writePart(&b, boundary, "text/plain", msg.Text)
	writePart(&b, boundary, "text/html", msg.HTML)
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

func writePart(b *strings.Builder, boundary, contentType, body string) {
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
}
