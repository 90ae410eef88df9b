package notify

import (
	"errors"
	"strings"
	"testing"
)

type captureSender struct {
	msgs []Message
	to   string
	err  error
}

func (c *captureSender) Send(from, to string, msg Message) error {
	c.to = to
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestRenderFailed(t *testing.T) {
	m := RenderFailed("tips-en", []string{"https://x/a.png", "https://x/b.png"})
	if !strings.Contains(m.Subject, "2 unreadable") || !strings.Contains(m.Subject, "tips-en") {
		t.Fatalf("unexpected subject %q", m.Subject)
	}
	if !strings.Contains(m.Text, "Cannot read <https://x/a.png>") {
		t.Fatalf("unexpected body %q", m.Text)
	}
}

func TestNotifyFailedDisabledIsNoop(t *testing.T) {
	c := &captureSender{}
	n := NewNotifier(EmailConfig{Enabled: false}).WithSender(c)
	if err := n.NotifyFailed("c", []string{"u"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(c.msgs) != 0 {
		t.Fatalf("disabled notifier must not send")
	}
	var nilNotifier *Notifier
	if err := nilNotifier.NotifyFailed("c", []string{"u"}); err != nil {
		t.Fatalf("nil notifier must be a no-op: %v", err)
	}
}

func TestNotifyFailedSends(t *testing.T) {
	c := &captureSender{}
	n := NewNotifier(EmailConfig{Enabled: true, ToEmail: "eds@example.com", FromEmail: "bot@example.com"}).WithSender(c)
	if err := n.NotifyFailed("c", nil); err != nil || len(c.msgs) != 0 {
		t.Fatalf("empty url list must not send: %v", err)
	}
	if err := n.NotifyFailed("c", []string{"u"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(c.msgs) != 1 || c.to != "eds@example.com" {
		t.Fatalf("unexpected capture %+v", c)
	}

	c.err = errors.New("smtp down")
	if err := n.NotifyFailed("c", []string{"u"}); err == nil {
		t.Fatalf("expected send error")
	}
}
