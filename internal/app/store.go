// Package app wires configuration into concrete adapters shared by the binaries.
package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/core/ports"
	"github.com/superapp/auth-service/internal/core/service"
	"github.com/superapp/auth-service/internal/infrastructure/db/mongo"
	"github.com/superapp/auth-service/internal/infrastructure/db/redis"
	"github.com/superapp/auth-service/internal/infrastructure/db/sqldb"
	"github.com/superapp/auth-service/internal/infrastructure/email"
	"github.com/superapp/auth-service/internal/pkg/config"
)

// OpenStore connects the account store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, error) {
	var (
		store ports.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err = sqldb.Open(ctx, sqldb.Options{
			Driver:       sqldb.DriverPostgres,
			DSN:          cfg.Store.DatabaseURL,
			MaxOpenConns: cfg.Store.MaxOpenConns,
		}, log)
	case config.DriverSQLite:
		store, err = sqldb.Open(ctx, sqldb.Options{
			Driver: sqldb.DriverSQLite,
			DSN:    cfg.Store.SQLitePath,
		}, log)
	case config.DriverMongo:
		store, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}, log)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// OpenRedis connects the optional stats cache. It returns nil, nil when
// REDIS_ADDR is empty.
func OpenRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	return redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// StatsCache wraps client, or returns nil to disable caching.
func StatsCache(client *goredis.Client, cfg *config.Config) service.StatsCache {
	if client == nil {
		return nil
	}
	return redis.NewStatsCache(client, cfg.Redis.StatsCacheTTL)
}

// Mailer picks SMTP delivery when EMAIL_HOST is set and log output otherwise.
func Mailer(cfg *config.Config, log zerolog.Logger) ports.Notifier {
	if cfg.Email.Host == "" {
		log.Warn().Msg("EMAIL_HOST not set, notifications will be logged instead of sent")
		return email.NewLogNotifier(log, cfg.Auth.ResetCodeTTL)
	}
	return email.NewSMTPNotifier(email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.User,
		Password: cfg.Email.Pass,
		From:     cfg.Email.From,
		ResetTTL: cfg.Auth.ResetCodeTTL,
	}, log)
}
