package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountUnverified  = errors.New("account not verified")
	ErrCodeMismatch       = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code has expired")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrForbidden          = errors.New("access forbidden")
)
