package mail

import (
	"context"
	"net/http"
	"unicode/utf8"

	"cadi-backend/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendGridMailer struct {
	key  string
	host string
	from *sgmail.Email
	log  *zerolog.Logger
}

var _ adapter.Mailer = (*SendGridMailer)(nil)

func NewSendGridMailer(key, fromName, fromEmail string, logger *zerolog.Logger) *SendGridMailer {
	l := logger.With().Str("component", "sendgrid_mailer").Logger()
	return &SendGridMailer{
		key:  key,
		host: sendgridHost,
		from: sgmail.NewEmail(fromName, fromEmail),
		log:  &l,
	}
}

func (m *SendGridMailer) Name() string { return "sendgrid" }

func (m *SendGridMailer) prepare(msg adapter.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}

// Send posts one message to the v3 API. Any status >= 400 is a DeliveryError.
func (m *SendGridMailer) Send(ctx context.Context, msg adapter.EmailMessage) (adapter.DeliveryOutcome, *adapter.DeliveryError) {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		m.log.Warn().Err(err).Msg("sendgrid request failed")
		return adapter.DeliveryOutcome{}, &adapter.DeliveryError{Provider: m.Name(), Reason: "request failed", Err: err}
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.log.Warn().Int("status", res.StatusCode).Str("body", res.Body).Msg("sendgrid rejected message")
		return adapter.DeliveryOutcome{}, &adapter.DeliveryError{
			Provider:   m.Name(),
			StatusCode: res.StatusCode,
			Reason:     truncate(res.Body, 500),
		}
	}

	out := adapter.DeliveryOutcome{Provider: m.Name(), StatusCode: res.StatusCode}
	if ids := res.Headers["X-Message-Id"]; len(ids) > 0 {
		out.MessageID = ids[0]
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
