// Package mailer renders notification templates and hands the resulting
// messages to an external delivery transport.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// Notification asks for the named template to be rendered with Data and sent to To.
type Notification struct {
	To       string
	ToName   string
	Template string
	Data     map[string]any
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridSender(apiKey, fromName, fromAddress string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.To)
	email := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no transport is configured.
type LogSender struct {
	Logger logrus.FieldLogger
}

// Send logs the recipient at info level and the body only at debug level.
func (s LogSender) Send(_ context.Context, msg Message) error {
	entry := s.Logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	entry.Info("email not delivered (no transport configured)")
	entry.Debugf("undelivered email body:\n%s", msg.Text)
	return nil
}

var (
	_ Sender = (*SendGridSender)(nil)
	_ Sender = LogSender{}
)
