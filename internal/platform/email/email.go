package email

import (
	"context"
	"net/mail"
	"strings"

	"hrunity/internal/apperr"
	"hrunity/internal/platform/config"
)

const (
	StatusSent      = "sent"
	StatusSimulated = "simulated"
)

var (
	ErrMissingCredentials = apperr.New(apperr.ErrExternalService, "email provider credentials are not configured")
	ErrNoRecipient        = apperr.New(apperr.ErrValidation, "email recipient is required")
)

type Message struct {
	From     string
	FromName string
	ReplyTo  string
	To       string
	ToName   string
	Subject  string
	HTML     string
	Text     string
}

type Result struct {
	Provider  string `json:"provider"`
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// Provider dispatches one message. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (Result, error)
}

// Checker is implemented by providers that can verify their connection
// without sending a message.
type Checker interface {
	Check(ctx context.Context) error
}

// Check verifies p when it supports checking; other providers pass.
func Check(ctx context.Context, p Provider) error {
	if c, ok := p.(Checker); ok {
		return c.Check(ctx)
	}
	return nil
}

func New(cfg config.Config) Provider {
	switch cfg.EmailProvider {
	case config.EmailSMTP:
		return &smtpMailer{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			user:     cfg.SMTPUser,
			password: cfg.SMTPPassword,
			useTLS:   cfg.SMTPUseTLS,
		}
	default:
		return NewSimulated()
	}
}

// formatAddress renders a mailbox for a header. Names outside printable
// ASCII, CR and LF included, are RFC 2047 encoded.
func formatAddress(name, address string) string {
	address = headerValue(address)
	name = strings.TrimSpace(name)
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

// headerValue folds line breaks so a value cannot start a new header.
func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
