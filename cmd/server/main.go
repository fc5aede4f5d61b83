package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/api"
	"github.com/superapp/auth-service/internal/api/handler"
	"github.com/superapp/auth-service/internal/app"
	"github.com/superapp/auth-service/internal/core/service"
	"github.com/superapp/auth-service/internal/infrastructure/db/redis"
	"github.com/superapp/auth-service/internal/infrastructure/queue"
	"github.com/superapp/auth-service/internal/pkg/config"
	"github.com/superapp/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Auth Service API
// @version                     1.0
// @description                 Account registration, email verification, login and password reset, plus an admin surface.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("configuration error")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := app.OpenStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	readiness := map[string]handler.Pinger{cfg.Store.Driver: store}

	rdb, err := app.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redis.Ping(ctx, rdb, time.Second)
		})
	}

	dispatcher := queue.NewDispatcher(cfg.Email.Workers, app.Mailer(cfg, logger.Component("email")), log)
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	statsCache := app.StatsCache(rdb, cfg)
	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	authService := service.NewAuthService(
		store,
		hasher,
		service.NewCodeGenerator(),
		dispatcher,
		tokens,
		logger.Component("auth"),
		service.AuthOptions{ResetCodeTTL: cfg.Auth.ResetCodeTTL, StatsCache: statsCache},
	)
	adminService := service.NewAdminService(store, hasher, statsCache, logger.Component("admin"))

	e := api.NewRouter(api.Deps{
		AuthService:  authService,
		AdminService: adminService,
		Tokens:       tokens,
		Store:        store,
		Readiness:    readiness,
		Log:          logger.Component("http"),
		StaticDir:    cfg.StaticDir,
		CORSOrigins:  cfg.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
