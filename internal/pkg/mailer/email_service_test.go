package mailer

import (
	"bytes"
	"errors"
	"testing"

	"ai-jobassist-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSendPaymentFailed_EscapesAndSends(t *testing.T) {
	capture := &captureSender{}
	svc := &emailService{dialer: capture, senderEmail: "billing@example.com", clientURL: "https://app.example.com", logger: logger.NewNopLogger()}

	require.NoError(t, svc.SendPaymentFailed("ada@example.com", "<Ada>", "Pro"))
	require.Len(t, capture.sent, 1)

	var buf bytes.Buffer
	_, err := capture.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "&lt;Ada&gt;")
}

func TestSend_NotConfigured(t *testing.T) {
	svc := NewEmailService(Config{}, logger.NewNopLogger())
	assert.ErrorIs(t, svc.SendSubscriptionCanceled("a@b.c", "A", "Pro"), ErrMailerNotConfigured)
}

func TestSend_PropagatesDialError(t *testing.T) {
	boom := errors.New("smtp down")
	svc := &emailService{dialer: &captureSender{err: boom}, logger: logger.NewNopLogger()}
	assert.ErrorIs(t, svc.SendSubscriptionCanceled("a@b.c", "A", "Pro"), boom)
}
