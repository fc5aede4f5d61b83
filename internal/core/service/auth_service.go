package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/core/domain"
	"github.com/superapp/auth-service/internal/core/ports"
)

const (
	defaultResetCodeTTL = time.Hour
	minPasswordLength   = 6
	// bcrypt only accepts up to 72 bytes.
	maxPasswordLength = 72
	minUsernameLength = 3
	maxUsernameLength = 64
	maxEmailLength    = 254
	maxFullNameLength = 100
)

// AuthOptions tunes the lifecycle engine. Zero values fall back to defaults.
type AuthOptions struct {
	ResetCodeTTL time.Duration
	Now          func() time.Time
	// StatsCache, when set, is invalidated by registrations and logins so
	// the admin dashboard counts stay current.
	StatsCache StatsCache
}

// AuthService drives the account lifecycle: registration, verification,
// login, and password reset.
type AuthService struct {
	repo     ports.AccountRepository
	hasher   PasswordHasher
	codes    CodeGenerator
	notifier ports.Notifier
	sessions SessionIssuer
	validate *validator.Validate
	stats    StatsCache
	log      zerolog.Logger

	resetTTL time.Duration
	now      func() time.Time
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher PasswordHasher,
	codes CodeGenerator,
	notifier ports.Notifier,
	sessions SessionIssuer,
	log zerolog.Logger,
	opts AuthOptions,
) *AuthService {
	if opts.ResetCodeTTL <= 0 {
		opts.ResetCodeTTL = defaultResetCodeTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		codes:    codes,
		notifier: notifier,
		sessions: sessions,
		validate: validator.New(),
		stats:    opts.StatsCache,
		log:      log,
		resetTTL: opts.ResetCodeTTL,
		now:      opts.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if err := s.checkEmail(in.Email); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	if in.Username != "" && len(in.Username) < minUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", domain.ErrValidation, minUsernameLength)
	}
	if utf8.RuneCountInString(in.FullName) > maxFullNameLength {
		return nil, fmt.Errorf("%w: full name must be at most %d characters", domain.ErrValidation, maxFullNameLength)
	}

	username := in.Username
	if username == "" {
		username = domain.UsernameFromEmail(in.Email)
	}
	if len(username) > maxUsernameLength {
		return nil, fmt.Errorf("%w: username must be at most %d characters", domain.ErrValidation, maxUsernameLength)
	}

	// Advisory pre-checks for a precise error; the insert's unique constraints
	// remain authoritative under concurrent registrations.
	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}
	exists, err = s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	code, err := s.codes.Generate()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	account := &domain.Account{
		Username:         username,
		Email:            in.Email,
		PasswordHash:     hash,
		Role:             domain.RoleUser,
		Active:           false,
		VerificationCode: &code,
		CreatedAt:        s.now().UTC(),
	}
	if in.FullName != "" {
		fullName := in.FullName
		account.FullName = &fullName
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.invalidateStats(ctx)
	s.notify(ctx, ports.Notification{Kind: ports.NotifyVerification, To: created.Email, Code: code})

	s.log.Info().Int64("account_id", created.ID).Str("email", created.Email).Msg("account registered, pending verification")

	return &ports.RegisterResult{
		ID:                   created.ID,
		Email:                created.Email,
		RequiresVerification: true,
	}, nil
}

func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	if len(code) != codeLength {
		return fmt.Errorf("%w: code must be %d characters", domain.ErrValidation, codeLength)
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return s.wrapLookup("verify", err)
	}

	if account.VerificationCode == nil || *account.VerificationCode != code {
		return domain.ErrCodeMismatch
	}

	if err := s.repo.Activate(ctx, account.ID, code); err != nil {
		if errors.Is(err, domain.ErrCodeMismatch) {
			return err
		}
		return fmt.Errorf("verify: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Msg("account verified")
	return nil
}

// Login checks activation before the password so an unverified account never
// reveals whether the supplied password was right.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !account.Active {
		return nil, domain.ErrAccountUnverified
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	account.LastLogin = &now
	s.invalidateStats(ctx)

	token, expiresAt, err := s.sessions.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Str("role", account.Role).Msg("login succeeded")

	return &ports.LoginResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

// ForgotPassword answers identically whether or not the email is known.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if err := s.checkEmail(email); err != nil {
		return err
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Info().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	code, err := s.codes.Generate()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	expires := s.now().UTC().Add(s.resetTTL)

	if err := s.repo.SetResetCode(ctx, account.ID, code, expires); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	s.notify(ctx, ports.Notification{Kind: ports.NotifyPasswordReset, To: account.Email, Code: code})

	s.log.Info().Int64("account_id", account.ID).Time("expires", expires).Msg("password reset code issued")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(code) != codeLength {
		return fmt.Errorf("%w: code must be %d characters", domain.ErrValidation, codeLength)
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidRequest
		}
		return fmt.Errorf("reset password: %w", err)
	}
	if !account.HasPendingReset() {
		return domain.ErrInvalidRequest
	}
	if *account.ResetCode != code {
		return domain.ErrCodeMismatch
	}

	now := s.now().UTC()
	if account.ResetExpiredAt(now) {
		if err := s.repo.ClearResetCode(ctx, account.ID, code); err != nil {
			s.log.Warn().Err(err).Int64("account_id", account.ID).Msg("failed to clear expired reset code")
		}
		return domain.ErrCodeExpired
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	if err := s.repo.ResetPassword(ctx, account.ID, code, hash, now); err != nil {
		if errors.Is(err, domain.ErrCodeMismatch) {
			return err
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Msg("password reset")
	return nil
}

func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (s *AuthService) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email must be at most %d characters", domain.ErrValidation, maxEmailLength)
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordLength)
	}
	return nil
}

func (s *AuthService) wrapLookup(op string, err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *AuthService) invalidateStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("stats cache invalidation failed")
	}
}

// notify delivers best-effort: a failure is logged and never undoes the
// state change that produced the code.
func (s *AuthService) notify(ctx context.Context, n ports.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Error().Err(err).Str("kind", string(n.Kind)).Str("to", n.To).Msg("notification failed")
	}
}
