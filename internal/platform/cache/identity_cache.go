// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	jwtmw "internship_backend/internal/platform/jwt"
)

// CachingIdentityResolver decorates an IdentityResolver with Redis caching.
// Every authenticated request resolves its identity, so the user row is
// cached for a short TTL and evicted with Invalidate when it changes.
type CachingIdentityResolver struct {
	inner     jwtmw.IdentityResolver
	rdb       redis.Cmdable
	ttl       time.Duration
	namespace string
}

var _ jwtmw.IdentityResolver = (*CachingIdentityResolver)(nil)

// NewCachingIdentityResolver wraps inner. If ttl is 0, it defaults to 5
// minutes. If namespace is empty, it uses "identity". A nil rdb disables
// caching.
func NewCachingIdentityResolver(rdb redis.Cmdable, ttl time.Duration, inner jwtmw.IdentityResolver, namespace string) *CachingIdentityResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "identity"
	}
	return &CachingIdentityResolver{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingIdentityResolver) key(userID uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, userID)
}

// ResolveIdentity checks the cache first then falls back to inner.
// Redis errors never fail the request.
func (c *CachingIdentityResolver) ResolveIdentity(ctx context.Context, userID uint) (*jwtmw.Identity, error) {
	if c.rdb == nil {
		return c.inner.ResolveIdentity(ctx, userID)
	}

	key := c.key(userID)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var id jwtmw.Identity
		if err := json.Unmarshal(b, &id); err == nil {
			return &id, nil
		}
		// 壊れたエントリは削除
		_ = c.rdb.Del(ctx, key).Err()
	}

	id, err := c.inner.ResolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(id); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "failed to cache identity", "error", err, "user_id", userID)
		}
	}
	return id, nil
}

// Invalidate evicts the cached identity of userID.
func (c *CachingIdentityResolver) Invalidate(ctx context.Context, userID uint) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(userID)).Err()
}
