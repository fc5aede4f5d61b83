package handler

import (
	"errors"

	"github.com/superapp/auth-service/internal/api/metrics"
	"github.com/superapp/auth-service/internal/core/domain"
)

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrValidation, "validation"},
	{domain.ErrDuplicateEmail, "duplicate_email"},
	{domain.ErrDuplicateUsername, "duplicate_username"},
	{domain.ErrAccountNotFound, "not_found"},
	{domain.ErrInvalidCredentials, "invalid_credentials"},
	{domain.ErrAccountUnverified, "unverified"},
	{domain.ErrCodeMismatch, "code_mismatch"},
	{domain.ErrCodeExpired, "code_expired"},
	{domain.ErrInvalidRequest, "invalid_request"},
	{domain.ErrCannotDeleteSelf, "self_delete"},
}

// observe records the outcome of op and passes err through.
func observe(op string, err error) error {
	metrics.OperationsTotal.WithLabelValues(op, outcomeLabel(err)).Inc()
	return err
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
