package sqldb

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/superapp/auth-service/internal/core/domain"
)

const pgUniqueViolation = "23505"

// mapUniqueViolation turns a unique-constraint failure on users into the
// matching domain conflict. Any other error is returned unchanged.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return conflictFor(pgErr.ConstraintName + " " + pgErr.Detail)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return conflictFor(sqliteErr.Error())
	}

	return err
}

func conflictFor(detail string) error {
	if strings.Contains(detail, "username") {
		return domain.ErrDuplicateUsername
	}
	return domain.ErrDuplicateEmail
}
