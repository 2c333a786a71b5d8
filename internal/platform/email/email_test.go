package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hrunity/internal/apperr"
	"hrunity/internal/platform/config"
)

func TestRenderFeedbackRequest(t *testing.T) {
	msg, err := RenderFeedbackRequest(FeedbackRequest{
		ToEmail:     "sarah.johnson@company.com",
		ToName:      "Sarah Johnson",
		FromName:    "John Smith",
		FromEmail:   "john.smith@company.com",
		QuarterName: "Q1",
		QuarterYear: 2025,
		Message:     "Thanks for <helping> on the launch",
		FeedbackURL: "http://localhost:8080/feedback/EMP001/2025-Q1",
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if msg.Subject != "Feedback Request for Q1 2025" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.To != "sarah.johnson@company.com" || msg.ReplyTo != "john.smith@company.com" {
		t.Fatalf("unexpected addressing: %+v", msg)
	}
	if !strings.Contains(msg.HTML, "&lt;helping&gt;") {
		t.Fatal("expected html part to escape the personal message")
	}
	if !strings.Contains(msg.Text, "<helping>") || !strings.Contains(msg.Text, "/feedback/EMP001/2025-Q1") {
		t.Fatalf("unexpected text part: %s", msg.Text)
	}
}

func TestSimulatedSend(t *testing.T) {
	sim := NewSimulated()
	res, err := sim.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"})
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if res.Status != StatusSimulated || !strings.HasPrefix(res.MessageID, "sim_") || res.Provider != "simulated" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(sim.Sent()) != 1 {
		t.Fatalf("expected 1 recorded message, got %d", len(sim.Sent()))
	}
	if _, err := sim.Send(context.Background(), Message{}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected missing recipient error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	if New(config.Config{EmailProvider: config.EmailSimulated}).Name() != "simulated" {
		t.Fatal("expected simulated provider")
	}
	if New(config.Config{EmailProvider: config.EmailSMTP, SMTPHost: "mail.example.com"}).Name() != "smtp" {
		t.Fatal("expected smtp provider")
	}
}

func TestSMTPMissingHostIsExternalFailure(t *testing.T) {
	mailer := New(config.Config{EmailProvider: config.EmailSMTP})
	_, err := mailer.Send(context.Background(), Message{To: "a@example.com"})
	if !errors.Is(err, ErrMissingCredentials) || !errors.Is(err, apperr.ErrExternalService) {
		t.Fatalf("expected missing credentials failure, got %v", err)
	}
}

func TestBuildMessageHasBothParts(t *testing.T) {
	raw := string(buildMessage(Message{
		From:     "noreply@hrunity.local",
		FromName: "Performance Management System",
		To:       "a@example.com",
		ReplyTo:  "john.smith@company.com",
		Subject:  "Feedback Request for Q2 2025",
		HTML:     "<p>hi</p>",
		Text:     "hi",
	}, "<id@mail>"))
	for _, want := range []string{
		`From: "Performance Management System" <noreply@hrunity.local>`,
		"Reply-To: john.smith@company.com",
		"Message-ID: <id@mail>",
		"multipart/alternative",
		"Content-Type: text/plain",
		"Content-Type: text/html",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected message to contain %q", want)
		}
	}
}

func TestBuildMessageEncodesHeaderLineBreaks(t *testing.T) {
	raw := string(buildMessage(Message{
		From:    "noreply@hrunity.local",
		To:      "a@example.com",
		ToName:  "Alex\r\nBcc: attacker@example.com",
		Subject: "Feedback\r\nBcc: attacker@example.com",
		Text:    "hi",
	}, "<id@mail>"))
	headers, _, _ := strings.Cut(raw, "\r\n\r\n")
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(line, "Bcc:") {
			t.Fatalf("unexpected injected header %q", line)
		}
	}
	if !strings.Contains(headers, "<a@example.com>") {
		t.Fatalf("expected recipient address in headers, got %q", headers)
	}
}

func TestCheck(t *testing.T) {
	if err := Check(context.Background(), NewSimulated()); err != nil {
		t.Fatalf("expected simulated provider to pass, got %v", err)
	}
	err := Check(context.Background(), New(config.Config{EmailProvider: config.EmailSMTP}))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected missing credentials, got %v", err)
	}
}
