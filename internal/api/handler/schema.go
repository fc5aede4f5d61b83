package handler

import "time"

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// --- Request types ---

type registerRequest struct {
	Email    string `json:"email"     validate:"required,email,max=254"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	Username string `json:"username"  validate:"omitempty,min=3,max=64"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Code        string `json:"code"        validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// --- Response types ---

type registerData struct {
	ID                   int64  `json:"id"`
	Email                string `json:"email"`
	RequiresVerification bool   `json:"requires_verification"`
}

type loginData struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FullName  *string   `json:"full_name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type unverifiedResponse struct {
	Status               string `json:"status"`
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requires_verification"`
	Email                string `json:"email"`
}

type checkEmailResponse struct {
	Exists bool `json:"exists"`
}

type userSummary struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	FullName  *string    `json:"full_name"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}
