package errors

import (
	"errors"
	"fmt"
)

var (
	// Generic
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")

	// Authentication
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidTokenType    = errors.New("invalid token type")
	ErrBlacklistedToken    = errors.New("token has been revoked")
	ErrTokenUsed           = errors.New("token has already been used")
	ErrInvalidRefreshToken = errors.New("invalid refresh token or device")

	// Users
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already registered")
	ErrUsernameExists   = errors.New("username already taken")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrAlreadyVerified  = errors.New("email already verified")

	// Devices
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceRevoked  = errors.New("device already revoked")
	ErrDeviceExists   = errors.New("device already registered")
)

// Code is the stable machine-readable identifier carried in API error
// envelopes. Clients branch on codes, never on messages.
type Code string

const (
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNotFound           Code = "DATA_NOT_FOUND"
	CodeAlreadyExists      Code = "DATA_ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED_USER"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeExpiredToken       Code = "EXPIRED_TOKEN"
	CodeRevokedToken       Code = "REVOKED_TOKEN"
	CodeInvalidTokenType   Code = "INVALID_TOKEN_TYPE"
	CodeEmailNotVerified   Code = "EMAIL_NOT_VERIFIED"
	CodeRateLimited        Code = "RATE_LIMITED"
)

// AppError attaches a user-facing message and API code to a sentinel error.
type AppError struct {
	Err     error
	Message string
	Code    Code
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, code Code) *AppError {
	return &AppError{Err: err, Message: message, Code: code}
}

// CodeOf maps an error chain to its API code. Unknown errors are internal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrExpiredToken):
		return CodeExpiredToken
	case errors.Is(err, ErrInvalidTokenType):
		return CodeInvalidTokenType
	case errors.Is(err, ErrBlacklistedToken), errors.Is(err, ErrDeviceRevoked), errors.Is(err, ErrTokenUsed):
		return CodeRevokedToken
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidRefreshToken):
		return CodeInvalidToken
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrEmailNotVerified):
		return CodeEmailNotVerified
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrDeviceNotFound), errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrEmailExists), errors.Is(err, ErrUsernameExists),
		errors.Is(err, ErrAlreadyVerified), errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrDeviceExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrDeviceNotFound)
}

// IsConflict reports whether err is a uniqueness or state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrAlreadyVerified) ||
		errors.Is(err, ErrDeviceExists)
}
