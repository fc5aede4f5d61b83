package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

type forbiddenBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RBAC admits callers whose role, as stored by Auth, is one of roles.
// Mount it after Auth; without claims every request is forbidden.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if role == "" || !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, forbiddenBody{Status: "error", Message: "forbidden"})
			}
			return next(c)
		}
	}
}
