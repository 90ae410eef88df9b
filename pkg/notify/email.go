// Package notify mails editors a digest of images the pipeline could not read.
package notify

import (
	"fmt"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"stonktip/pkg/logging"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// Message is a rendered digest.
type Message struct {
	Subject string
	Text    string
}

// Sender delivers a rendered message. *gomail.Dialer satisfies it through dialerSender.
type Sender interface {
	Send(from, to string, msg Message) error
}

type dialerSender struct {
	dialer *gomail.Dialer
}

func (d dialerSender) Send(from, to string, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", strings.Split(to, ",")...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	return d.dialer.DialAndSend(m)
}

// Notifier sends failed-image digests. A disabled notifier is a no-op.
type Notifier struct {
	cfg    EmailConfig
	sender Sender
	log    *logging.Logger
}

func NewNotifier(cfg EmailConfig) *Notifier {
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second
	return &Notifier{cfg: cfg, sender: dialerSender{dialer: dialer}, log: logging.New("notify")}
}

// WithSender swaps the transport; used by tests.
func (n *Notifier) WithSender(s Sender) *Notifier {
	n.sender = s
	return n
}

// RenderFailed builds the digest for urls that failed in channel.
func RenderFailed(channel string, urls []string) Message {
	lines := make([]string, 0, len(urls)+2)
	for _, u := range urls {
		lines = append(lines, fmt.Sprintf("Cannot read <%s>", u))
	}
	lines = append(lines, "", "Drain the list with GET /fails?channel="+channel+" once reviewed.")
	return Message{
		Subject: fmt.Sprintf("[stonktip] %d unreadable tip image(s) in %s", len(urls), channel),
		Text:    strings.Join(lines, "\n"),
	}
}

// NotifyFailed mails the digest for urls. Nothing is sent when disabled or urls is empty.
func (n *Notifier) NotifyFailed(channel string, urls []string) error {
	if n == nil || !n.cfg.Enabled || len(urls) == 0 {
		return nil
	}
	msg := RenderFailed(channel, urls)
	if err := n.sender.Send(n.cfg.FromEmail, n.cfg.ToEmail, msg); err != nil {
		n.log.Error("failed to send digest", "to", n.cfg.ToEmail, "subject", msg.Subject, "err", err)
		return fmt.Errorf("send failure digest: %w", err)
	}
	n.log.Info("digest sent", "subject", msg.Subject)
	return nil
}
