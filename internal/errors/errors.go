package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUsernameTaken is returned when a username is already claimed.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidUsernameFormat is returned when a username fails validation.
	ErrInvalidUsernameFormat = errors.New("username must be 3-20 alphanumeric characters")
	// ErrInvalidPinFormat is returned when a PIN is not exactly 6 digits.
	ErrInvalidPinFormat = errors.New("pin must be exactly 6 digits")
	// ErrInvalidPin is returned when PIN verification fails.
	ErrInvalidPin = errors.New("invalid username or pin")
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrListNotFound is returned when a list does not exist or is not visible.
	ErrListNotFound = errors.New("list not found")
	// ErrSlugConflict is returned when the owner already has a list with that slug.
	ErrSlugConflict = errors.New("slug already in use")
	// ErrInvalidSlugFormat is returned when a slug fails validation.
	ErrInvalidSlugFormat = errors.New("slug must be 1-50 alphanumeric or hyphen characters")
	// ErrNotListOwner is returned when a caller mutates a list they do not own.
	ErrNotListOwner = errors.New("not the list owner")
	// ErrInvalidSession is returned when a session token is missing, expired or revoked.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// LockedOutError is returned when an account is under an active lockout.
// It carries the remaining wait so handlers can tell the user when to retry.
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("account locked, retry after %s", e.RetryAfter.Round(time.Second))
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code"`
	RetryAfterSeconds int64  `json:"retry_after_seconds,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode        int
	Message           string
	Code              string
	RetryAfterSeconds int64
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:             e.Message,
		Code:              e.Code,
		RetryAfterSeconds: e.RetryAfterSeconds,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var locked *LockedOutError
	if errors.As(err, &locked) {
		httpErr := NewHTTPError(http.StatusTooManyRequests, locked.Error(), "LOCKED_OUT")
		httpErr.RetryAfterSeconds = int64(locked.RetryAfter.Seconds() + 0.5)
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidUsernameFormat):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_USERNAME_FORMAT")
	case errors.Is(err, ErrInvalidPinFormat):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PIN_FORMAT")
	case errors.Is(err, ErrInvalidPin):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_PIN")
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrListNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LIST_NOT_FOUND")
	case errors.Is(err, ErrSlugConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "SLUG_CONFLICT")
	case errors.Is(err, ErrInvalidSlugFormat):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_SLUG_FORMAT")
	case errors.Is(err, ErrNotListOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_LIST_OWNER")
	case errors.Is(err, ErrInvalidSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_SESSION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
