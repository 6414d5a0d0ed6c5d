package auth

import "errors"

var (
	// ErrMalformedToken marks any token that cannot be decoded into claims.
	ErrMalformedToken = errors.New("malformed token")
	// ErrTokenExpired marks a well-formed token whose exp is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnauthenticated is returned by the gate for no, malformed or expired tokens.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrPermissionDenied is returned when the session is valid but no role qualifies.
	ErrPermissionDenied = errors.New("permission denied")
)
