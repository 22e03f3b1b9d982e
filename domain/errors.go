package domain

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionCorrupt  = errors.New("persisted session is corrupt")
)

// Backend errors
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotFound           = errors.New("resource not found")
)

// Authorization errors
var (
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrForbidden         = errors.New("insufficient role permissions")
	ErrIllegalTransition = errors.New("status transition not allowed")
)

// AuthError is a login/registration failure carrying a message fit for display
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }
