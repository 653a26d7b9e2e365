// Package ratelimiter は固定ウィンドウ方式のリクエスト頻度制限を提供します。
package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision は1回の判定結果です。
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter は key ごとに interval あたり limit 回までの操作を許可します。
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(limit, count int, resetIn time.Duration) Decision {
	d := Decision{Allowed: count <= limit, Limit: limit, Remaining: limit - count}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = resetIn
	}
	return d
}

type window struct {
	count     int
	lastReset time.Time
}

// MemoryLimiter is a single-process Limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	limit    int           // interval あたりの上限
	interval time.Duration // どの単位でリセットするか
	windows  map[string]*window
	now      func() time.Time
}

// NewMemoryLimiter は新しい MemoryLimiter を生成します。
func NewMemoryLimiter(limit int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
		now:      time.Now,
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= l.interval {
		w = &window{lastReset: now}
		l.windows[key] = w
		l.sweep(now)
	}
	w.count++
	return decide(l.limit, w.count, l.interval-now.Sub(w.lastReset)), nil
}

// sweep は期限切れのウィンドウを捨てます。呼び出し側でロック済みであること。
func (l *MemoryLimiter) sweep(now time.Time) {
	if len(l.windows) < 1024 {
		return
	}
	for k, w := range l.windows {
		if now.Sub(w.lastReset) >= l.interval {
			delete(l.windows, k)
		}
	}
}

// RedisLimiter shares counters between instances through Redis.
type RedisLimiter struct {
	rdb      redis.Cmdable
	limit    int
	interval time.Duration
	prefix   string
}

// NewRedisLimiter は Redis を使う Limiter を生成します。
func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, interval time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, interval: interval, prefix: prefix}
}

var _ Limiter = (*RedisLimiter)(nil)

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", k, err)
	}

	resetIn := ttl.Val()
	// 有効期限なし（新規キー）のときだけ設定
	if resetIn < 0 {
		if err := l.rdb.PExpire(ctx, k, l.interval).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire %s: %w", k, err)
		}
		resetIn = l.interval
	}
	return decide(l.limit, int(incr.Val()), resetIn), nil
}
