package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "internship_backend/internal/feature/auth/adapters"
	"internship_backend/internal/platform/cache"
	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/mail"
	"internship_backend/internal/platform/upload"
	"internship_backend/internal/shared/ratelimiter"
)

// NewIdentityResolver wraps the users table lookup with a Redis cache.
// Without Redis every request reads the table.
func NewIdentityResolver(rdb *redis.Client, db *gorm.DB, ttl time.Duration) *cache.CachingIdentityResolver {
	inner := authadapters.NewIdentityGorm(db)
	if rdb == nil {
		// typed nil を Cmdable に入れると nil 判定できない
		return cache.NewCachingIdentityResolver(nil, ttl, inner, "identity")
	}
	return cache.NewCachingIdentityResolver(rdb, ttl, inner, "identity")
}

// NewLoginLimiter counts login attempts per client in Redis, or in process
// memory for a single instance.
func NewLoginLimiter(rdb *redis.Client, s config.RateLimitSettings) ratelimiter.Limiter {
	if s.LoginMax <= 0 {
		return nil
	}
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, "ratelimit", s.LoginMax, s.LoginWindow)
	}
	return ratelimiter.NewMemoryLimiter(s.LoginMax, s.LoginWindow)
}

// NewMailSender sends through SMTP when configured. Otherwise messages are
// only logged, which is what development uses.
func NewMailSender(s config.SMTPSettings, log *slog.Logger) mail.Sender {
	if s.Enabled() {
		return mail.NewSMTPSender(s)
	}
	log.Warn("SMTP not configured; verification emails are logged instead of sent")
	return mail.NewLogSender(log)
}

// NewFileStore returns the upload backend selected by upload.storage.
func NewFileStore(ctx context.Context, s config.UploadSettings) (upload.FileStore, error) {
	if s.Storage == "s3" {
		return upload.NewS3Store(ctx, s)
	}
	return upload.NewLocalStore(s.Dir)
}
