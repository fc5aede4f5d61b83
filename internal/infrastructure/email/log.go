package email

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/core/ports"
)

// LogNotifier writes notifications to the log instead of sending them. It is
// used when no SMTP host is configured.
type LogNotifier struct {
	log      zerolog.Logger
	resetTTL time.Duration
}

func NewLogNotifier(log zerolog.Logger, resetTTL time.Duration) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "email").Logger(), resetTTL: resetTTL}
}

func (l *LogNotifier) Notify(_ context.Context, n ports.Notification) error {
	subject, _, err := compose(n, l.resetTTL)
	if err != nil {
		return err
	}
	l.log.Info().Str("kind", string(n.Kind)).Str("to", n.To).Str("subject", subject).Msg("email not sent, no SMTP host configured")
	l.log.Debug().Str("to", n.To).Str("code", n.Code).Msg("notification code")
	return nil
}
