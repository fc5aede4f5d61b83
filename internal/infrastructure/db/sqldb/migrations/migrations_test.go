package migrations

import (
	"io/fs"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_UnknownDialect(t *testing.T) {
	_, err := For("mysql")
	assert.Error(t, err)
}

// Column widths must hold every value registration accepts: a 64 byte
// username (an email local part) and a 254 byte address.
func TestPostgresUserColumnsFitAcceptedInput(t *testing.T) {
	fsys, err := For("postgres")
	require.NoError(t, err)
	raw, err := fs.ReadFile(fsys, "00001_create_users.sql")
	require.NoError(t, err)

	width := func(column string) int {
		m := regexp.MustCompile(`(?m)^\s*` + column + `\s+VARCHAR\((\d+)\)`).FindSubmatch(raw)
		require.NotNil(t, m, column)
		n, err := strconv.Atoi(string(m[1]))
		require.NoError(t, err)
		return n
	}

	assert.GreaterOrEqual(t, width("username"), 64)
	assert.GreaterOrEqual(t, width("email"), 254)
	assert.GreaterOrEqual(t, width("full_name"), 100)
	assert.GreaterOrEqual(t, width("password_hash"), 60)
}

func TestSQLiteMigrationsPresent(t *testing.T) {
	fsys, err := For("sqlite3")
	require.NoError(t, err)
	matches, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}
