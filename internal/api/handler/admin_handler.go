package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/superapp/auth-service/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Stats returns the dashboard summary.
//
// @Summary      Dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=domain.Stats}
// @Failure      401  {object}  envelope
// @Failure      403  {object}  envelope
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminService.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Status: "success", Data: stats})
}

// ListUsers returns the newest accounts, at most 50.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of users (1-50)"
// @Success      200    {object}  envelope{data=[]userSummary}
// @Failure      401    {object}  envelope
// @Failure      403    {object}  envelope
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	accounts, err := h.adminService.ListUsers(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	users := make([]userSummary, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, userSummary{
			ID:        a.ID,
			Username:  a.Username,
			Email:     a.Email,
			Role:      a.Role,
			IsActive:  a.Active,
			FullName:  a.FullName,
			CreatedAt: a.CreatedAt,
			LastLogin: a.LastLogin,
		})
	}
	return c.JSON(http.StatusOK, envelope{Status: "success", Data: users})
}

// DeleteUser removes an account. Admins cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  envelope
// @Failure      400  {object}  envelope
// @Failure      401  {object}  envelope
// @Failure      403  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actorID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := observe("delete_user", h.adminService.DeleteUser(c.Request().Context(), actorID, id)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Status: "success", Message: "User deleted"})
}
