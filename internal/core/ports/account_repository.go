package ports

import (
	"context"
	"time"

	"github.com/superapp/auth-service/internal/core/domain"
)

// AccountRepository defines account persistence. Every lifecycle transition is
// a single conditional write so concurrent callers cannot both consume a code.
type AccountRepository interface {
	// Create inserts a new account and returns it with its store-assigned ID.
	// Unique-constraint violations map to domain.ErrDuplicateEmail or
	// domain.ErrDuplicateUsername.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	// Activate sets the account active and clears its verification code, only
	// when the stored code still equals code. Returns domain.ErrCodeMismatch
	// when no row matched.
	Activate(ctx context.Context, id int64, code string) error

	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	// SetResetCode overwrites any outstanding reset code and expiry.
	SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error

	// ClearResetCode drops the reset pair if it still holds code.
	ClearResetCode(ctx context.Context, id int64, code string) error

	// ResetPassword replaces the hash and clears the reset pair, only when the
	// stored code equals code and has not expired at now. Returns
	// domain.ErrCodeMismatch when no row matched.
	ResetPassword(ctx context.Context, id int64, code, passwordHash string, now time.Time) error
}

// AdminRepository backs the admin surface and the bootstrap command.
type AdminRepository interface {
	CountAll(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountLoggedInSince(ctx context.Context, since time.Time) (int64, error)
	ListNewest(ctx context.Context, limit int) ([]*domain.Account, error)
	// Delete removes an account. Returns domain.ErrAccountNotFound when absent.
	Delete(ctx context.Context, id int64) error
	// UpsertAdmin promotes and activates the account matching email or
	// username, replacing its password, or creates it when absent.
	UpsertAdmin(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// Store is implemented by every backend.
type Store interface {
	AccountRepository
	AdminRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
