// Package di provides the factories that choose between Redis and SQL (or
// local) implementations at start-up.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "internship_backend/internal/feature/auth/adapters"
	"internship_backend/internal/feature/auth/usecase"
	"internship_backend/internal/platform/session"
)

// NewSessionRepository keeps refresh sessions in Redis when it is available
// and in the sessions table otherwise.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionGorm(db)
}
