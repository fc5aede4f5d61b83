package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/superapp/auth-service/docs"
	"github.com/superapp/auth-service/internal/api/handler"
	"github.com/superapp/auth-service/internal/api/middleware"
	"github.com/superapp/auth-service/internal/core/domain"
	"github.com/superapp/auth-service/internal/core/ports"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	AuthService  ports.AuthService
	AdminService ports.AdminService
	Tokens       middleware.TokenParser

	// Store answers /api/health; Readiness lists every dependency probed by /health/ready.
	Store     handler.Pinger
	Readiness map[string]handler.Pinger

	Log         zerolog.Logger
	StaticDir   string
	CORSOrigins []string

	// Registry overrides the default Prometheus registry for HTTP metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(deps.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit("64K"))

	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "http"}
	handlerCfg := echoprometheus.HandlerConfig{}
	if deps.Registry != nil {
		metricsCfg.Registerer = deps.Registry
		handlerCfg.Gatherer = deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	adminHandler := handler.NewAdminHandler(deps.AdminService)
	healthHandler := handler.NewHealthHandler(deps.Store, deps.Readiness)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify", authHandler.Verify)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/check-email/:email", authHandler.CheckEmail)

	// --- Admin routes (bearer token, admin role) ---
	admin := api.Group("/admin", middleware.Auth(deps.Tokens), middleware.RBAC(domain.RoleAdmin))
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/users", adminHandler.ListUsers)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	// --- Health probes (no auth required) ---
	api.GET("/health", healthHandler.Health)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerCfg))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if deps.StaticDir != "" {
		e.Static("/", deps.StaticDir)
	}

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				evt = log.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				evt = log.Warn()
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
