package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/core/domain"
	"github.com/superapp/auth-service/internal/core/ports"
)

const (
	defaultListLimit = 50
	activeWindow     = 24 * time.Hour
)

// StatsCache abstracts the dashboard cache (Redis). A nil StatsCache disables caching.
type StatsCache interface {
	Get(ctx context.Context) (*domain.Stats, bool, error)
	Set(ctx context.Context, stats *domain.Stats) error
	Invalidate(ctx context.Context) error
}

type AdminService struct {
	repo   ports.AdminRepository
	hasher PasswordHasher
	cache  StatsCache
	log    zerolog.Logger
	now    func() time.Time
}

func NewAdminService(repo ports.AdminRepository, hasher PasswordHasher, cache StatsCache, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, hasher: hasher, cache: cache, log: log, now: time.Now}
}

// Stats returns the dashboard summary, served from the cache when fresh.
func (s *AdminService) Stats(ctx context.Context) (*domain.Stats, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed, querying store")
		} else if ok {
			return cached, nil
		}
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	today, err := s.repo.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	active, err := s.repo.CountLoggedInSince(ctx, now.Add(-activeWindow))
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	stats := &domain.Stats{
		TotalUsers:     total,
		NewUsersToday:  today,
		ActiveSessions: active,
		ServerStatus:   "OK",
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

// ListUsers returns the newest accounts. limit is clamped to (0, 50].
func (s *AdminService) ListUsers(ctx context.Context, limit int) ([]*domain.Account, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	accounts, err := s.repo.ListNewest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return accounts, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return domain.ErrCannotDeleteSelf
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("stats cache invalidation failed")
		}
	}

	s.log.Info().Int64("account_id", id).Int64("actor_id", actorID).Msg("account deleted")
	return nil
}

// EnsureAdmin creates or promotes an active admin account.
func (s *AdminService) EnsureAdmin(ctx context.Context, email, username, password string) (*domain.Account, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	if username == "" {
		username = domain.UsernameFromEmail(email)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	account, err := s.repo.UpsertAdmin(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	return account, nil
}
