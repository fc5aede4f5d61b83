package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// For returns the migration set for a goose dialect.
func For(dialect string) (fs.FS, error) {
	switch dialect {
	case "postgres", "pgx":
		return fs.Sub(files, "postgres")
	case "sqlite3":
		return fs.Sub(files, "sqlite")
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}
}
