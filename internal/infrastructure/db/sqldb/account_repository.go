package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/superapp/auth-service/internal/core/domain"
)

const accountColumns = `id, username, email, password_hash, role, is_active,
	verification_code, reset_code, reset_expires, full_name, created_at, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a                         domain.Account
		verification, reset, name sql.NullString
		resetExpires, lastLogin   sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.Active,
		&verification, &reset, &resetExpires, &name, &a.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}

	a.VerificationCode = nullString(verification)
	a.ResetCode = nullString(reset)
	a.FullName = nullString(name)
	a.ResetExpires = nullTime(resetExpires)
	a.LastLogin = nullTime(lastLogin)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *Store) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	query := s.rebind(`INSERT INTO users (username, email, password_hash, role, is_active,
		verification_code, reset_code, reset_expires, full_name, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	created := *a
	created.CreatedAt = a.CreatedAt.UTC()
	err := s.db.QueryRowContext(ctx, query,
		a.Username, a.Email, a.PasswordHash, a.Role, a.Active,
		toNullString(a.VerificationCode), toNullString(a.ResetCode), toNullTime(a.ResetExpires),
		toNullString(a.FullName), created.CreatedAt, toNullTime(a.LastLogin),
	).Scan(&created.ID)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &created, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := s.rebind(`SELECT ` + accountColumns + ` FROM users WHERE email = ?`)

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, email)
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, username)
}

func (s *Store) exists(ctx context.Context, query string, arg any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(query), arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

// Activate flips the account active only while the stored code still equals code.
func (s *Store) Activate(ctx context.Context, id int64, code string) error {
	query := s.rebind(`UPDATE users SET is_active = ?, verification_code = NULL
		WHERE id = ? AND verification_code = ?`)
	return s.execOne(ctx, domain.ErrCodeMismatch, query, true, id, code)
}

func (s *Store) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	query := s.rebind(`UPDATE users SET last_login = ? WHERE id = ?`)
	return s.execOne(ctx, domain.ErrAccountNotFound, query, at.UTC(), id)
}

func (s *Store) SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error {
	query := s.rebind(`UPDATE users SET reset_code = ?, reset_expires = ? WHERE id = ?`)
	return s.execOne(ctx, domain.ErrAccountNotFound, query, code, expires.UTC(), id)
}

// ClearResetCode drops the reset pair if code is still the outstanding one.
func (s *Store) ClearResetCode(ctx context.Context, id int64, code string) error {
	query := s.rebind(`UPDATE users SET reset_code = NULL, reset_expires = NULL
		WHERE id = ? AND reset_code = ?`)
	if _, err := s.db.ExecContext(ctx, query, id, code); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ResetPassword stores the new hash and clears the reset pair in one
// conditional write; a consumed, superseded or expired code matches no row.
func (s *Store) ResetPassword(ctx context.Context, id int64, code, passwordHash string, now time.Time) error {
	query := s.rebind(`UPDATE users SET password_hash = ?, reset_code = NULL, reset_expires = NULL
		WHERE id = ? AND reset_code = ? AND reset_expires >= ?`)
	return s.execOne(ctx, domain.ErrCodeMismatch, query, passwordHash, id, code, now.UTC())
}

func (s *Store) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (s *Store) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= ?`, since.UTC())
}

func (s *Store) CountLoggedInSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE last_login > ?`, since.UTC())
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (s *Store) ListNewest(ctx context.Context, limit int) ([]*domain.Account, error) {
	query := s.rebind(`SELECT ` + accountColumns + ` FROM users
		ORDER BY created_at DESC, id DESC LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return accounts, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.execOne(ctx, domain.ErrAccountNotFound, s.rebind(`DELETE FROM users WHERE id = ?`), id)
}

// UpsertAdmin promotes the account matching a's email or username, or inserts a.
func (s *Store) UpsertAdmin(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT id FROM users WHERE email = ? OR username = ?
		ORDER BY id LIMIT 1`), a.Email, a.Username).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, s.rebind(`INSERT INTO users (username, email, password_hash, role,
			is_active, full_name, created_at) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			a.Username, a.Email, a.PasswordHash, domain.RoleAdmin, true, toNullString(a.FullName), a.CreatedAt.UTC(),
		).Scan(&id)
	case err == nil:
		_, err = tx.ExecContext(ctx, s.rebind(`UPDATE users SET password_hash = ?, role = ?, is_active = ?,
			verification_code = NULL WHERE id = ?`), a.PasswordHash, domain.RoleAdmin, true, id)
	}
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account, err := scanAccount(tx.QueryRowContext(ctx,
		s.rebind(`SELECT `+accountColumns+` FROM users WHERE id = ?`), id))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

// execOne runs a single-row write and returns notMatched when no row changed.
func (s *Store) execOne(ctx context.Context, notMatched error, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return notMatched
	}
	return nil
}
