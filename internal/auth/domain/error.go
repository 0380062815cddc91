package domain

import "errors"

var (
	ErrUserExists         = errors.New("user_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotVerified        = errors.New("account_not_verified")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrPasswordMismatch   = errors.New("password_mismatch")
)
