package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/superapp/auth-service/internal/api/middleware"
)

// ctxAccountID extracts the caller identity injected by the Auth middleware.
// A zero id means the middleware did not run.
func ctxAccountID(c echo.Context) (int64, error) {
	id, _ := c.Get(middleware.KeyAccountID).(int64)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
