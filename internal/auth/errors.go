package auth

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when signing up with an email that is
	// already registered.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a wrong email/password pair.
	// Deliberately indistinguishable between unknown email and bad password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserDisabled is returned when a deactivated account attempts login.
	ErrUserDisabled = errors.New("user account is disabled")

	// ErrTokenInvalid is returned for malformed, expired, or tampered tokens.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrWeakPassword is returned when a password fails the minimum policy.
	ErrWeakPassword = errors.New("password does not meet minimum requirements")

	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
)
