package email

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superapp/auth-service/internal/core/ports"
)

func TestCompose(t *testing.T) {
	subject, body, err := compose(ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "123456"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "Verify your account", subject)
	assert.Contains(t, body, "123456")

	subject, body, err = compose(ports.Notification{Kind: ports.NotifyPasswordReset, To: "a@x.com", Code: "654321"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, body, "654321")
	assert.Contains(t, body, "60 minutes")

	_, _, err = compose(ports.Notification{Kind: "welcome"}, time.Hour)
	assert.Error(t, err)
}

func TestSMTPNotifier_BuildMessage(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "noreply@example.com"}, zerolog.Nop())

	msg := n.buildMessage("a@x.com", "Verify your account", "body")
	assert.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\nTo: a@x.com\r\n"))
	assert.Contains(t, msg, "Subject: Verify your account\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nbody"))
}

func TestSMTPNotifier_DialFailure(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: 1}, zerolog.Nop())

	err := n.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "123456"})
	assert.ErrorContains(t, err, "connecting to SMTP server")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf).Level(zerolog.DebugLevel), time.Hour)

	err := n.Notify(context.Background(), ports.Notification{Kind: ports.NotifyPasswordReset, To: "a@x.com", Code: "654321"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"a@x.com"`)
	assert.Contains(t, buf.String(), `"code":"654321"`)

	buf.Reset()
	quiet := NewLogNotifier(zerolog.New(&buf).Level(zerolog.InfoLevel), time.Hour)
	require.NoError(t, quiet.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "111111"}))
	assert.NotContains(t, buf.String(), "111111")
}
