package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superapp/auth-service/internal/infrastructure/email"
	"github.com/superapp/auth-service/internal/pkg/config"
)

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "auth.db"),
	}}

	store, err := OpenStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close(context.Background())

	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	store, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mysql"}}, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestOpenRedis(t *testing.T) {
	client, err := OpenRedis(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, StatsCache(client, &config.Config{}))

	mr := miniredis.RunT(t)
	cfg := &config.Config{Redis: config.RedisConfig{Addr: mr.Addr()}}
	client, err = OpenRedis(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()
	assert.NotNil(t, StatsCache(client, cfg))
}

func TestMailer(t *testing.T) {
	_, isLog := Mailer(&config.Config{}, zerolog.Nop()).(*email.LogNotifier)
	assert.True(t, isLog)

	cfg := &config.Config{Email: config.EmailConfig{Host: "smtp.example.com", Port: 587}}
	_, isSMTP := Mailer(cfg, zerolog.Nop()).(*email.SMTPNotifier)
	assert.True(t, isSMTP)
}
