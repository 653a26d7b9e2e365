package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"internship_backend/internal/platform/config"
)

// NewRedisClient connects to Redis. It returns (nil, nil) when Redis is not
// configured so callers fall back to SQL/in-memory implementations.
func NewRedisClient(ctx context.Context, s config.RedisSettings) (*redis.Client, error) {
	addr := s.Addr()
	if addr == "" {
		slog.Info("Redis not configured; using fallbacks")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: s.Password,
		DB:       s.DB,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
