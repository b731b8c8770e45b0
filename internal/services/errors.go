package services

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requires a
	// signed-in actor and none is present.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when an authenticated actor is not
	// allowed to perform the operation (wrong owner).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed input: empty comment
	// text, bad price, missing title, unknown tag. Wrapped with a
	// message describing the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned on login failure. Unknown
	// identifier and wrong password produce this same error so the two
	// causes cannot be told apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a password-reset token is
	// unknown, already consumed or past its validity window.
	ErrInvalidToken = errors.New("invalid or expired token")
)
