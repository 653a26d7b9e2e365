// Package domain defines domain-level errors for the auth feature.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials はメールアドレスかパスワードの誤り。どちらかは区別しない。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified is returned on login before the email address was verified.
	ErrEmailNotVerified = errors.New("email address is not verified")

	// ErrAccountLocked matches every *LockedError via errors.Is.
	ErrAccountLocked = errors.New("account is temporarily locked")
)

// LockedError reports a locked account together with the lock expiry.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked until %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// RetryAfter returns the seconds left until the lock expires, at least 1.
func (e *LockedError) RetryAfter(now time.Time) int {
	secs := int(e.Until.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}
