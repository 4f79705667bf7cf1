package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestResetMessageEscapesHTML(t *testing.T) {
	expires := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	msg := ResetMessage("a@x.com", "<Ann>", "tok123", expires)

	assert.Equal(t, "a@x.com", msg.To)
	assert.Contains(t, msg.Text, "tok123")
	assert.Contains(t, msg.Text, "1 May 2024 12:00 UTC")
	assert.Contains(t, msg.HTML, "&lt;Ann&gt;")
	assert.NotContains(t, msg.HTML, "<Ann>")
}

func TestSendGridBuildsSingleEmail(t *testing.T) {
	var got *mail.SGMailV3
	s := NewSendGrid("key", "no-reply@example.org", quietLogger())
	s.send = func(_ context.Context, msg *mail.SGMailV3) (int, string, error) {
		got = msg
		return 202, "", nil
	}

	err := s.SendPasswordReset(context.Background(), "a@x.com", "Ann", "tok123", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "no-reply@example.org", got.From.Address)
	assert.Equal(t, "Reset your password", got.Subject)
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "a@x.com", got.Personalizations[0].To[0].Address)
	require.Len(t, got.Content, 2)
	assert.True(t, strings.Contains(got.Content[0].Value, "tok123"))
}

func TestSendGridReportsFailures(t *testing.T) {
	s := NewSendGrid("key", "no-reply@example.org", quietLogger())

	s.send = func(context.Context, *mail.SGMailV3) (int, string, error) {
		return 401, `{"errors":[{"message":"bad key"}]}`, nil
	}
	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "x", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	s.send = func(context.Context, *mail.SGMailV3) (int, string, error) {
		return 0, "", errors.New("dial tcp: timeout")
	}
	assert.Error(t, s.Send(context.Background(), Message{To: "a@x.com", Subject: "x", Text: "x"}))
}

func TestNewFallsBackToLog(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)

	sender := New("", "no-reply@example.org", logger)
	require.IsType(t, &LogMailer{}, sender)
	require.NoError(t, sender.SendPasswordReset(context.Background(), "a@x.com", "Ann", "tok123", time.Now()))
	assert.Contains(t, out.String(), "tok123")

	assert.IsType(t, &SendGrid{}, New("key", "no-reply@example.org", logger))
}
