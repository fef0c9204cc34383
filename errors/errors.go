package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidValue       = fmt.Errorf("invalid value")
	ErrInvalidSession     = fmt.Errorf("invalid session")
	ErrInvalidDocument    = fmt.Errorf("invalid document")
	ErrUnknownSession     = fmt.Errorf("unknown session")
	ErrSessionExists      = fmt.Errorf("session already exists")
	ErrUnknownDocument    = fmt.Errorf("unknown document")
	ErrSessionFull        = fmt.Errorf("session is full")
	ErrEditNotAllowed     = fmt.Errorf("edit not allowed")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

// MapToHTTPStatus translates domain sentinels into transport status codes.
// The transport layer is the only caller; domain code never sees HTTP.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidValue),
		errors.Is(err, ErrInvalidSession),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownSession),
		errors.Is(err, ErrUnknownDocument):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionFull),
		errors.Is(err, ErrSessionExists),
		errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrEditNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
