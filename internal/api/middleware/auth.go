package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/superapp/auth-service/internal/core/service"
)

// Context keys set by Auth.
const (
	KeyAccountID = "account_id"
	KeyEmail     = "email"
	KeyRole      = "role"
)

// TokenParser verifies a session token and returns its claims.
type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

// Auth validates the bearer token and stores the caller's claims in the
// echo context under the Key* names.
func Auth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := parser.Parse(parts[1])
			if err != nil || claims.ID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(KeyAccountID, claims.ID)
			c.Set(KeyEmail, claims.Email)
			c.Set(KeyRole, claims.Role)

			return next(c)
		}
	}
}
