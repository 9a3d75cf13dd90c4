package mail

import (
	"context"
	"fmt"
	"sync"

	"cadi-backend/internal/config"
	"cadi-backend/internal/domain/ports/adapter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConsoleMailer logs messages instead of sending them and keeps a copy of
// everything it accepted. Used in development and tests.
type ConsoleMailer struct {
	mu   sync.Mutex
	sent []adapter.EmailMessage
	log  *zerolog.Logger
}

var _ adapter.Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer(logger *zerolog.Logger) *ConsoleMailer {
	l := logger.With().Str("component", "console_mailer").Logger()
	return &ConsoleMailer{log: &l}
}

func (m *ConsoleMailer) Name() string { return "console" }

func (m *ConsoleMailer) Send(ctx context.Context, msg adapter.EmailMessage) (adapter.DeliveryOutcome, *adapter.DeliveryError) {
	if msg.To == "" {
		return adapter.DeliveryOutcome{}, &adapter.DeliveryError{Provider: m.Name(), Reason: "missing recipient"}
	}
	if err := ctx.Err(); err != nil {
		return adapter.DeliveryOutcome{}, &adapter.DeliveryError{Provider: m.Name(), Reason: "context done", Err: err}
	}
	id := uuid.NewString()
	m.log.Info().
		Str("message_id", id).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("email")

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return adapter.DeliveryOutcome{Provider: m.Name(), MessageID: id, StatusCode: 202}, nil
}

// Sent returns a copy of accepted messages.
func (m *ConsoleMailer) Sent() []adapter.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.EmailMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// New builds the mailer selected by cfg.Provider.
func New(cfg config.MailConfig, logger *zerolog.Logger) (adapter.Mailer, error) {
	switch cfg.Provider {
	case "", "console":
		return NewConsoleMailer(logger), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("mail: sendgrid api key missing")
		}
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail, logger), nil
	}
	return nil, fmt.Errorf("mail: unknown provider %q", cfg.Provider)
}
