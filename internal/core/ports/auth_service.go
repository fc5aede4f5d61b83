package ports

import (
	"context"
	"time"

	"github.com/superapp/auth-service/internal/core/domain"
)

// RegisterInput carries the registration form. Username and FullName are optional.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// RegisterResult acknowledges a pending registration. It never carries the code.
type RegisterResult struct {
	ID                   int64
	Email                string
	RequiresVerification bool
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Verify(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type AdminService interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	ListUsers(ctx context.Context, limit int) ([]*domain.Account, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
	EnsureAdmin(ctx context.Context, email, username, password string) (*domain.Account, error)
}
