package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Login failures for unknown email and wrong password are deliberately
	// the same error so callers can't enumerate registered emails
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrTokenInvalid         = errors.New("token is invalid")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")
)
