// Package mailer delivers transactional mail through SendGrid, or writes it
// to the log when no API key is configured.
package mailer

import (
	"context"
	"fmt"
	"html"
	"time"

	"charity/internal/metrics"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

const senderName = "Arise and Shine Ministries"

// Message is a rendered email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// ResetMessage renders the password reset mail.
func ResetMessage(to, name, token string, expiresAt time.Time) Message {
	expires := expiresAt.UTC().Format("2 January 2006 15:04 MST")
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Reset your password",
		Text: fmt.Sprintf("Hello %s,\n\nUse this code to reset your password: %s\n\nThe code expires on %s. "+
			"If you did not ask for a reset you can ignore this message.\n", name, token, expires),
		HTML: fmt.Sprintf(`<p>Hello %s,</p>
<p>Use this code to reset your password:</p>
<p style="font-family: monospace; font-size: 16px;"><strong>%s</strong></p>
<p>The code expires on %s. If you did not ask for a reset you can ignore this message.</p>`,
			html.EscapeString(name), html.EscapeString(token), expires),
	}
}

type sendFunc func(ctx context.Context, msg *mail.SGMailV3) (int, string, error)

type SendGrid struct {
	from   *mail.Email
	send   sendFunc
	logger logrus.FieldLogger
}

func NewSendGrid(apiKey, from string, logger logrus.FieldLogger) *SendGrid {
	client := sendgrid.NewSendClient(apiKey)
	return &SendGrid{
		from: mail.NewEmail(senderName, from),
		send: func(ctx context.Context, msg *mail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, msg)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
		logger: logger,
	}
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.To)
	status, body, err := s.send(ctx, mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML))
	if err == nil && status >= 300 {
		err = fmt.Errorf("sendgrid: status %d: %s", status, body)
	}
	if err != nil {
		metrics.RecordMail("sendgrid", "error")
		return err
	}
	metrics.RecordMail("sendgrid", "ok")
	s.logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("mail sent")
	return nil
}

func (s *SendGrid) SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error {
	return s.Send(ctx, ResetMessage(to, name, token, expiresAt))
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger logrus.FieldLogger
}

func NewLogMailer(logger logrus.FieldLogger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	metrics.RecordMail("log", "ok")
	m.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Text)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error {
	return m.Send(ctx, ResetMessage(to, name, token, expiresAt))
}

// Sender is satisfied by both mailers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error
}

// New picks SendGrid when apiKey is set.
func New(apiKey, from string, logger logrus.FieldLogger) Sender {
	if apiKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, mail will be logged only")
		return NewLogMailer(logger)
	}
	return NewSendGrid(apiKey, from, logger)
}
