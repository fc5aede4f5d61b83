package ports

import "context"

// NotificationKind distinguishes what a delivered code is for.
type NotificationKind string

const (
	NotifyVerification  NotificationKind = "verification"
	NotifyPasswordReset NotificationKind = "password_reset"
)

// Notification is a single out-of-band code delivery.
type Notification struct {
	Kind NotificationKind
	To   string
	Code string
}

// Notifier delivers codes to an address. Delivery is best-effort: callers
// log a failure and carry on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
