package adapter

import (
	"context"
	"fmt"
)

// EmailMessage is a provider-agnostic outgoing email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string // optional
}

// DeliveryOutcome describes an accepted send.
type DeliveryOutcome struct {
	Provider   string
	MessageID  string // provider id if available
	StatusCode int
}

// DeliveryError describes a rejected or failed send. Callers record it in the
// delivery log; it never aborts the surrounding operation.
type DeliveryError struct {
	Provider   string
	StatusCode int
	Reason     string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Reason, e.StatusCode)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Mailer is the hex port for email providers.
type Mailer interface {
	Name() string
	// Send returns exactly one of outcome or *DeliveryError.
	Send(ctx context.Context, msg EmailMessage) (DeliveryOutcome, *DeliveryError)
}
