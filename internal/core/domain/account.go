package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is the single persisted entity: identity, credential and the
// lifecycle fields driving verification and password reset.
type Account struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	Active           bool       `json:"is_active"`
	VerificationCode *string    `json:"-"`
	ResetCode        *string    `json:"-"`
	ResetExpires     *time.Time `json:"-"`
	FullName         *string    `json:"full_name"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLogin        *time.Time `json:"last_login"`
}

// IsAdmin reports whether the account carries the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasPendingReset reports whether a password-reset code is outstanding.
func (a *Account) HasPendingReset() bool {
	return a.ResetCode != nil && a.ResetExpires != nil
}

// ResetExpiredAt reports whether the outstanding reset code is past its
// validity at t. An account without a pending reset is never expired.
func (a *Account) ResetExpiredAt(t time.Time) bool {
	if a.ResetExpires == nil {
		return false
	}
	return t.After(*a.ResetExpires)
}

// UsernameFromEmail derives the default username: the local part of the address.
func UsernameFromEmail(email string) string {
	if i := strings.LastIndex(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers     int64  `json:"totalUsers"`
	NewUsersToday  int64  `json:"newUsersToday"`
	ActiveSessions int64  `json:"activeSessions"`
	ServerStatus   string `json:"serverStatus"`
}
