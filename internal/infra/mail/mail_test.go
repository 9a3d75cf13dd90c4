//go:build !integration

package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"cadi-backend/internal/config"
	"cadi-backend/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newTestSendGrid(t *testing.T, h http.HandlerFunc) *SendGridMailer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m := NewSendGridMailer("sg-key", "CADI", "no-reply@cadi.local", newTestLogger())
	m.host = srv.URL
	return m
}

func TestSendGridMailer(t *testing.T) {
	msg := adapter.EmailMessage{To: "ana@uni.edu", ToName: "Ana", Subject: "[CADI] Hola", Text: "cuerpo"}

	t.Run("should post a v3 payload and return the message id", func(t *testing.T) {
		var gotAuth, gotPath string
		var payload map[string]any
		m := newTestSendGrid(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&payload)
			w.Header().Set("X-Message-Id", "sg-123")
			w.WriteHeader(http.StatusAccepted)
		})

		out, derr := m.Send(context.Background(), msg)
		if derr != nil {
			t.Fatalf("expected no delivery error, got %v", derr)
		}
		if out.MessageID != "sg-123" || out.StatusCode != http.StatusAccepted || out.Provider != "sendgrid" {
			t.Errorf("unexpected outcome %+v", out)
		}
		if gotAuth != "Bearer sg-key" {
			t.Errorf("unexpected auth header %q", gotAuth)
		}
		if gotPath != sendgridEndpoint {
			t.Errorf("unexpected path %q", gotPath)
		}
		pers, _ := payload["personalizations"].([]any)
		if len(pers) != 1 {
			t.Fatalf("expected one personalization, got %v", payload["personalizations"])
		}
		if subj := pers[0].(map[string]any)["subject"]; subj != "[CADI] Hola" {
			t.Errorf("unexpected subject %v", subj)
		}
	})

	t.Run("should report provider rejection as delivery error", func(t *testing.T) {
		m := newTestSendGrid(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"message":"invalid email"}]}`))
		})

		_, derr := m.Send(context.Background(), msg)
		if derr == nil {
			t.Fatal("expected delivery error")
		}
		if derr.StatusCode != http.StatusBadRequest || !strings.Contains(derr.Reason, "invalid email") {
			t.Errorf("unexpected delivery error %+v", derr)
		}
	})

	t.Run("should wrap transport failures", func(t *testing.T) {
		m := NewSendGridMailer("sg-key", "CADI", "no-reply@cadi.local", newTestLogger())
		m.host = "http://127.0.0.1:1"

		_, derr := m.Send(context.Background(), msg)
		if derr == nil || derr.Err == nil {
			t.Fatalf("expected transport error, got %+v", derr)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Run("should keep short bodies intact", func(t *testing.T) {
		if got := truncate("hola", 10); got != "hola" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("should not split multibyte runes", func(t *testing.T) {
		body := strings.Repeat("a", 499) + "ñandú"
		got := truncate(body, 500)
		if !utf8.ValidString(got) {
			t.Fatalf("truncated body is not valid utf-8: %q", got[len(got)-3:])
		}
		if len(got) != 499 {
			t.Errorf("expected cut before the rune, got len %d", len(got))
		}
	})
}

func TestConsoleMailer(t *testing.T) {
	t.Run("should record accepted messages", func(t *testing.T) {
		m := NewConsoleMailer(newTestLogger())
		out, derr := m.Send(context.Background(), adapter.EmailMessage{To: "ana@uni.edu", Subject: "s", Text: "t"})
		if derr != nil {
			t.Fatalf("unexpected error %v", derr)
		}
		if out.MessageID == "" || out.Provider != "console" {
			t.Errorf("unexpected outcome %+v", out)
		}
		if sent := m.Sent(); len(sent) != 1 || sent[0].To != "ana@uni.edu" {
			t.Errorf("unexpected sent list %+v", sent)
		}
	})

	t.Run("should reject missing recipient", func(t *testing.T) {
		m := NewConsoleMailer(newTestLogger())
		if _, derr := m.Send(context.Background(), adapter.EmailMessage{Subject: "s"}); derr == nil {
			t.Fatal("expected delivery error")
		}
		if len(m.Sent()) != 0 {
			t.Error("rejected message should not be recorded")
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("should select provider from config", func(t *testing.T) {
		m, err := New(config.MailConfig{Provider: "sendgrid", SendGridAPIKey: "k", FromEmail: "a@b.c"}, newTestLogger())
		if err != nil || m.Name() != "sendgrid" {
			t.Fatalf("expected sendgrid mailer, got %v, %v", m, err)
		}
		m, err = New(config.MailConfig{}, newTestLogger())
		if err != nil || m.Name() != "console" {
			t.Fatalf("expected console mailer, got %v, %v", m, err)
		}
	})

	t.Run("should fail on unknown provider", func(t *testing.T) {
		if _, err := New(config.MailConfig{Provider: "smtp"}, newTestLogger()); err == nil {
			t.Fatal("expected error")
		}
	})
}
