// Package session stores refresh sessions in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/feature/auth/usecase"
)

// SessionRedis implements usecase.SessionRepository using Redis.
//
// Keys:
//
//	<prefix>:<id>        JSON record, expires with the session
//	<prefix>:user:<uid>  sorted set of session ids scored by creation time
//
// Revoking deletes the record, so a revoked session is reported as not found.
type SessionRedis struct {
	client redis.Cmdable
	prefix string
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client redis.Cmdable, prefix string) *SessionRedis {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionRedis{client: client, prefix: prefix}
}

type record struct {
	UserID    uint      `json:"uid"`
	UserAgent string    `json:"ua,omitempty"`
	IPAddress string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created"`
	ExpiresAt time.Time `json:"expires"`
}

func (r *SessionRedis) sessionKey(id string) string {
	return r.prefix + ":" + id
}

func (r *SessionRedis) userKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create persists a new session with a TTL matching its expiry.
func (r *SessionRedis) Create(ctx context.Context, s *entity.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := json.Marshal(record{
		UserID:    s.UserID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.sessionKey(s.ID), data, ttl)
		p.ZAdd(ctx, r.userKey(s.UserID), redis.Z{Score: float64(s.CreatedAt.UnixMilli()), Member: s.ID})
		return nil
	})
	return err
}

// FindByID retrieves a session by its ID.
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &entity.Session{
		ID:        id,
		UserID:    rec.UserID,
		UserAgent: rec.UserAgent,
		IPAddress: rec.IPAddress,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Revoke deletes the session. Only the caller whose DEL removed the key
// succeeds; everyone else gets ErrSessionNotFound.
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, r.sessionKey(id))
		p.ZRem(ctx, r.userKey(s.UserID), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// live returns the ids of sessions whose record still exists, oldest first,
// and drops index entries of sessions Redis has already expired.
func (r *SessionRedis) live(ctx context.Context, userID uint) ([]string, error) {
	key := r.userKey(userID)
	ids, err := r.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	exists := make([]*redis.IntCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			exists[i] = p.Exists(ctx, r.sessionKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ids))
	var stale []any
	for i, id := range ids {
		if exists[i].Val() > 0 {
			out = append(out, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		_ = r.client.ZRem(ctx, key, stale...).Err()
	}
	return out, nil
}

// RevokeAllByUserID deletes every session of a user.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	ids, err := r.live(ctx, userID)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.sessionKey(id))
	}
	keys = append(keys, r.userKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

// CountByUserID counts live sessions. Expiry is enforced by Redis TTLs, so
// now is not consulted.
func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint, _ time.Time) (int64, error) {
	ids, err := r.live(ctx, userID)
	return int64(len(ids)), err
}

// DeleteOldestByUserID deletes the oldest live session of a user.
func (r *SessionRedis) DeleteOldestByUserID(ctx context.Context, userID uint, _ time.Time) error {
	ids, err := r.live(ctx, userID)
	if err != nil || len(ids) == 0 {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.sessionKey(ids[0]))
		p.ZRem(ctx, r.userKey(userID), ids[0])
		return nil
	})
	return err
}

// DeleteExpired prunes index entries of expired sessions. The records
// themselves are removed by Redis. Returns the number of pruned entries.
func (r *SessionRedis) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	var (
		cursor uint64
		pruned int64
	)
	pattern := r.prefix + ":user:*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return pruned, err
		}
		for _, key := range keys {
			uid, err := strconv.ParseUint(strings.TrimPrefix(key, r.prefix+":user:"), 10, 64)
			if err != nil {
				continue
			}
			before, err := r.client.ZCard(ctx, key).Result()
			if err != nil {
				return pruned, err
			}
			ids, err := r.live(ctx, uint(uid))
			if err != nil {
				return pruned, err
			}
			pruned += before - int64(len(ids))
		}
		cursor = next
		if cursor == 0 {
			return pruned, nil
		}
	}
}
