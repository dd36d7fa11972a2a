package errors

import (
	"errors"
	"fmt"
)

// Common error types for the authentication service
var (
	// Input errors
	ErrValidation = errors.New("invalid request")

	// Account errors
	ErrConflict             = errors.New("account conflict")
	ErrAccountExistsLocally = errors.New("account registered locally")
	ErrNotFound             = errors.New("not found")

	// Credential and token errors
	ErrBadCredentials  = errors.New("bad credentials")
	ErrUnauthenticated = errors.New("unauthenticated")

	// Infrastructure errors
	ErrStore      = errors.New("store failure")
	ErrSigningKey = errors.New("signing key unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
