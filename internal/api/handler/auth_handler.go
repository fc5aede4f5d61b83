package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/superapp/auth-service/internal/core/domain"
	"github.com/superapp/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Register creates a pending account and sends its verification code.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  envelope{data=registerData}
// @Failure      400   {object}  envelope
// @Failure      409   {object}  envelope
// @Failure      500   {object}  envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return observe("register", err)
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err := observe("register", err); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, envelope{
		Status:  "pending_verification",
		Message: "Account created. Check your email for the verification code.",
		Data: registerData{
			ID:                   res.ID,
			Email:                res.Email,
			RequiresVerification: res.RequiresVerification,
		},
	})
}

// Verify activates an account with the emailed code.
//
// @Summary      Verify an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Email and verification code"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/auth/verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return observe("verify", err)
	}

	if err := observe("verify", h.authService.Verify(c.Request().Context(), req.Email, req.Code)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{Status: "success", Message: "Account verified. You can now log in."})
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=loginData}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      403   {object}  unverifiedResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return observe("login", err)
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err := observe("login", err); err != nil {
		if errors.Is(err, domain.ErrAccountUnverified) {
			return c.JSON(http.StatusForbidden, unverifiedResponse{
				Status:               "unverified",
				Message:              "Account not verified. Check your email for the verification code.",
				RequiresVerification: true,
				Email:                req.Email,
			})
		}
		return err
	}

	a := res.Account
	return c.JSON(http.StatusOK, envelope{
		Status:  "success",
		Message: "Login successful",
		Data: loginData{
			ID:        a.ID,
			Username:  a.Username,
			Email:     a.Email,
			Role:      a.Role,
			FullName:  a.FullName,
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		},
	})
}

// ForgotPassword issues a reset code. The answer is identical for unknown emails.
//
// @Summary      Request a password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return observe("forgot_password", err)
	}

	if err := observe("forgot_password", h.authService.ForgotPassword(c.Request().Context(), req.Email)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{
		Status:  "success",
		Message: "If the email is registered, a reset code has been sent.",
	})
}

// ResetPassword sets a new password using an emailed reset code.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email, reset code and new password"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return observe("reset_password", err)
	}

	err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword)
	if err := observe("reset_password", err); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{Status: "success", Message: "Password updated. You can now log in."})
}

// CheckEmail reports whether an email is already registered.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  path      string  true  "Email address"
// @Success      200    {object}  checkEmailResponse
// @Failure      500    {object}  envelope
// @Router       /api/auth/check-email/{email} [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	exists, err := h.authService.EmailExists(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkEmailResponse{Exists: exists})
}
