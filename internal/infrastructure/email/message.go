package email

import (
	"fmt"
	"time"

	"github.com/superapp/auth-service/internal/core/ports"
)

// compose renders the subject and plain-text body for a notification.
func compose(n ports.Notification, resetTTL time.Duration) (string, string, error) {
	switch n.Kind {
	case ports.NotifyVerification:
		return "Verify your account", fmt.Sprintf(`Hello!

Your verification code is:

    %s

Enter it to activate your account.

If you didn't create an account, you can safely ignore this email.`, n.Code), nil
	case ports.NotifyPasswordReset:
		return "Reset your password", fmt.Sprintf(`Hello!

Your password reset code is:

    %s

This code will expire in %d minutes.

If you didn't request a password reset, you can safely ignore this email.`, n.Code, int(resetTTL.Minutes())), nil
	default:
		return "", "", fmt.Errorf("unknown notification kind %q", n.Kind)
	}
}
