package domain

import "errors"

var (
	// ErrUnauthenticated indicates the request carried no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound indicates the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the entity exists but the caller does not own it.
	ErrForbidden = errors.New("forbidden")
	// ErrEmailTaken indicates a registration attempt with an email already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a failed login. Callers are not told
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}
