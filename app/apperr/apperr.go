// Package apperr defines the error taxonomy shared by services and
// controllers. Services wrap these sentinels with context
// (fmt.Errorf("%w: ...")); controllers map them onto HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means a referenced entity id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the request contradicts current state, e.g.
	// re-confirming a confirmed order state or deleting an accepted order.
	ErrConflict = errors.New("conflict")
	// ErrInvalid means the request body or parameters are malformed.
	ErrInvalid = errors.New("invalid request")
	// ErrForbidden means the authenticated user may not perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized means the caller failed to authenticate.
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundf wraps ErrNotFound with an identifying message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with an identifying message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Invalidf wraps ErrInvalid with an identifying message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Unauthorizedf wraps ErrUnauthorized with an identifying message.
func Unauthorizedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// Status maps an error to the HTTP status its caller should answer with.
// Unknown errors map to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
