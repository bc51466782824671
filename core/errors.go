package core

import "errors"

// Authentication related errors
var (
	// User errors
	ErrEmailTaken         = errors.New("email already registered")    // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")              // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password")   // 401 Unauthorized
	ErrAlreadyVerified    = errors.New("email is already verified")   // 409 Conflict
	ErrInvalidSignature   = errors.New("invalid verification link")   // 400
	ErrResetInvalid       = errors.New("invalid or expired password reset token") // 400
)

// Bearer token errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")                              // 401
	ErrInvalidAuthHeader = errors.New("invalid authorization format, expected 'Bearer <token>'")   // 401
	ErrInvalidToken      = errors.New("invalid access token")                                      // 401
	ErrTokenExpired      = errors.New("access token expired")                                      // 401
	ErrTokenNotFound     = errors.New("access token not found")
	ErrCacheMiss         = errors.New("token not found in cache")
)

// Validation errors (client input)
var (
	ErrNameRequired     = errors.New("name is required")                     // 400
	ErrEmailRequired    = errors.New("email is required")                    // 400
	ErrInvalidEmail     = errors.New("invalid email format")                 // 400
	ErrPasswordRequired = errors.New("password is required")                 // 400
	ErrPasswordTooShort = errors.New("password is too short")                // 400
	ErrPasswordTooLong  = errors.New("password is too long")                 // 400
	ErrPasswordMismatch = errors.New("password confirmation does not match") // 400
	ErrTokenRequired    = errors.New("token is required")                    // 400
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired  = errors.New("storage adapter is required")  // 500
	ErrNotifierRequired = errors.New("notifier is required")         // 500
	ErrSecretRequired   = errors.New("secret is required")           // 500
	ErrSecretTooShort   = errors.New("secret too short")             // 500
)
