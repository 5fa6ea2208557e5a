package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateAccount   = errors.New("user already exists with this email or username")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCode        = errors.New("invalid otp")
	ErrExpired            = errors.New("otp has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("please verify your email first")
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidTarget      = errors.New("cannot follow yourself")
	ErrEmailDelivery      = errors.New("failed to send email")
	ErrStorage            = errors.New("storage error")
)

// StatusCode maps a domain error to its HTTP status. Storage and email
// failures map to 500 and must not leak engine detail to the caller.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrStorage), errors.Is(err, ErrEmailDelivery):
		return http.StatusInternalServerError
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNotVerified),
		errors.Is(err, ErrInvalidTarget):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message for err. Internal failures are
// reported generically.
func Message(err error) string {
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrEmailDelivery) {
		if errors.Is(err, ErrEmailDelivery) {
			return ErrEmailDelivery.Error()
		}
		return "server error"
	}
	return err.Error()
}
