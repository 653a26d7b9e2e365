// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"internship_backend/internal/shared/role"
)

// User is a registered account of any role.
type User struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	Role         role.Role

	EmailVerified bool

	// FailedLoginAttempts counts consecutive wrong passwords since the last
	// successful login or lockout.
	FailedLoginAttempts int
	LockoutUntil        *time.Time

	// VerificationTokenHash は生トークンのSHA-256 (hex)。生の値は保存しない。
	VerificationTokenHash      string
	VerificationTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// LockRemaining returns how long the lock still holds, or 0.
func (u *User) LockRemaining(now time.Time) time.Duration {
	if !u.IsLocked(now) {
		return 0
	}
	return u.LockoutUntil.Sub(now)
}

// VerificationExpired reports whether the pending verification token has expired.
func (u *User) VerificationExpired(now time.Time) bool {
	return u.VerificationTokenExpiresAt == nil || !now.Before(*u.VerificationTokenExpiresAt)
}

// Organization carries the role-specific name collected at registration.
// Company accounts get a company profile, Admin accounts a college.
type Organization struct {
	CompanyName string
	CollegeName string
}
