package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/infrastructure/db/sqldb/migrations"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	connectTimeout = 10 * time.Second
)

type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Store is the relational account store. It serves both Postgres (pgx) and
// SQLite; queries are written with '?' placeholders and rebound per dialect.
type Store struct {
	db       *sql.DB
	postgres bool
}

// Open connects, pings and applies pending migrations.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (*Store, error) {
	var (
		driverName string
		dsn        = opts.DSN
		dialect    string
	)

	switch opts.Driver {
	case DriverPostgres:
		driverName, dialect = "pgx", "postgres"
	case DriverSQLite:
		driverName, dialect = "sqlite3", "sqlite3"
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn += "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", opts.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrate(ctx, db, dialect, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Info().Str("driver", opts.Driver).Msg("connected to sql store")
	return &Store{db: db, postgres: opts.Driver == DriverPostgres}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect string, log zerolog.Logger) error {
	fsys, err := migrations.For(dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log: log.With().Str("component", "goose").Logger()})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// rebind rewrites '?' placeholders into Postgres' positional form.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
