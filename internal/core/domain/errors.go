package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("access forbidden")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrServerMisconfigured = errors.New("server configuration error")
)

// Validation failures. Each wraps ErrValidation so transports can map the
// whole family to a single status.
var (
	ErrMissingFields    = fmt.Errorf("%w: email, password, role, and username are required", ErrValidation)
	ErrMissingLogin     = fmt.Errorf("%w: email and password are required", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	ErrInvalidRole      = fmt.Errorf("%w: invalid role provided", ErrValidation)
	ErrNoFields         = fmt.Errorf("%w: no fields provided to update", ErrValidation)
	ErrMissingUserID    = fmt.Errorf("%w: user id is required", ErrValidation)
)

const (
	// MinPasswordLength is the shortest accepted plaintext password, in characters.
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)
