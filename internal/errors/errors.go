package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session and notification service
var (
	// Token errors
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")
	ErrTokenAlreadyBlacklisted = errors.New("token already blacklisted")

	// Member errors
	ErrMemberNotFound = errors.New("member not found")

	// Identity provider errors
	ErrOAuthProcessing = errors.New("oauth processing failed")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")
	ErrEventNotFound        = errors.New("calendar event not found")
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
