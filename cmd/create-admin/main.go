// Command create-admin creates an administrator account, or promotes and
// re-passwords an existing one matched by email or username.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/app"
	"github.com/superapp/auth-service/internal/core/domain"
	"github.com/superapp/auth-service/internal/core/service"
	"github.com/superapp/auth-service/internal/pkg/config"
	"github.com/superapp/auth-service/pkg/logger"
)

type adminInput struct {
	email    string
	username string
	password string
}

func main() {
	var in adminInput
	flag.StringVar(&in.email, "email", os.Getenv("ADMIN_EMAIL"), "admin email address")
	flag.StringVar(&in.username, "username", os.Getenv("ADMIN_USERNAME"), "admin username (defaults to the email local part)")
	flag.StringVar(&in.password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password (6 to 72 bytes)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "create-admin"})

	account, err := run(ctx, cfg, log, in)
	if err != nil {
		log.Error().Err(err).Msg("creating admin")
		cancel()
		os.Exit(1)
	}

	log.Info().
		Int64("id", account.ID).
		Str("email", account.Email).
		Str("username", account.Username).
		Msg("admin account ready")
}

// run opens the store, upserts the admin and always closes the store. A
// close failure is reported alongside any upsert error.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, in adminInput) (account *domain.Account, err error) {
	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := store.Close(context.Background()); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
		}
	}()

	admins := service.NewAdminService(store, service.NewBcryptHasher(cfg.Auth.BcryptCost), nil, log)
	return admins.EnsureAdmin(ctx, in.email, in.username, in.password)
}
