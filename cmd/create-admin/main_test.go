package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/superapp/auth-service/internal/core/domain"
	"github.com/superapp/auth-service/internal/pkg/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Store: config.StoreConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "auth.db"),
		},
	}
}

func TestRun_CreatesThenPromotes(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	created, err := run(ctx, cfg, zerolog.Nop(), adminInput{email: "root@x.com", password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "root", created.Username)
	assert.Equal(t, domain.RoleAdmin, created.Role)
	assert.True(t, created.Active)

	// The first run closed its store; a second run reopens the same file.
	again, err := run(ctx, cfg, zerolog.Nop(), adminInput{email: "root@x.com", username: "root", password: "password2"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestRun_ReturnsErrors(t *testing.T) {
	cfg := sqliteConfig(t)

	_, err := run(context.Background(), cfg, zerolog.Nop(), adminInput{email: "root@x.com", password: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = run(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mysql"}}, zerolog.Nop(), adminInput{})
	assert.ErrorContains(t, err, "open store")
}
