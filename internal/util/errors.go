// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrCardNotFound        = errors.New("card not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateTag        = errors.New("card with this UID already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateUser       = errors.New("user already exists")
)

// IsError reports whether err matches the given sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
