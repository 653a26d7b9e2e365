package usecase

import (
	"context"
	"time"

	"internship_backend/internal/feature/auth/domain/entity"
)

// SessionRepository abstracts where refresh sessions live (Redis or SQL).
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID returns ErrSessionNotFound for unknown IDs.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke returns ErrSessionNotFound when nothing was revoked.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID revokes every session of a user, e.g. after a password reset.
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// CountByUserID counts the sessions still usable at now.
	CountByUserID(ctx context.Context, userID uint, now time.Time) (int64, error)

	// DeleteOldestByUserID drops the oldest usable session of a user.
	DeleteOldestByUserID(ctx context.Context, userID uint, now time.Time) error

	// DeleteExpired purges sessions expired before now and returns how many went.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
