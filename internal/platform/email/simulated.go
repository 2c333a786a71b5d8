package email

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Simulated records messages instead of sending them.
type Simulated struct {
	mu   sync.Mutex
	sent []Message
}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Name() string {
	return "simulated"
}

func (s *Simulated) Send(ctx context.Context, msg Message) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(msg.To) == "" {
		return Result{}, ErrNoRecipient
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	id := "sim_" + uuid.NewString()
	slog.Info("simulated email", "to", msg.To, "subject", msg.Subject, "messageId", id)
	return Result{Provider: s.Name(), MessageID: id, Status: StatusSimulated}, nil
}

// Sent returns the messages recorded so far.
func (s *Simulated) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
