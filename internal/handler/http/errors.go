package http

import "errors"

var (
	// ErrInvalidAuthorizationHeader indicates a malformed Authorization
	// header (missing scheme or token part).
	ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

	// ErrEmptyToken indicates an Authorization header whose token part is
	// an empty string.
	ErrEmptyToken = errors.New("empty token")
)
