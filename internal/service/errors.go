package service

import "errors"

var (
	ErrDuplicateAccount          = errors.New("account with this email already exists")
	ErrPersonNotFound            = errors.New("email not found in school directory")
	ErrDirectoryUnavailable      = errors.New("school directory unavailable")
	ErrInvalidOrConsumedToken    = errors.New("invalid or already used verification token")
	ErrTokenExpired              = errors.New("verification token expired")
	ErrNotFoundOrAlreadyVerified = errors.New("account not found or email already verified")
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrEmailNotVerified          = errors.New("email not verified")
	ErrAccountInactive           = errors.New("account is not active")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrWeakPassword              = errors.New("password must be between 1 and 72 bytes")
	ErrRateLimited               = errors.New("rate limited")
)
