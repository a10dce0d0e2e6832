package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the limiter's answer for one operation attempt.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window counter keyed by (user, operation kind),
// backed by Redis so the window survives process restarts and is shared
// across instances.
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
	limits map[string]int
}

func NewLimiter(rdb *redis.Client, window time.Duration, limits map[string]int) *Limiter {
	return &Limiter{
		rdb:    rdb,
		window: window,
		limits: limits,
	}
}

// Allow consumes one slot for (userID, kind). On Redis failure it fails
// open: the live conversation is never blocked by limiter bookkeeping.
func (l *Limiter) Allow(ctx context.Context, userID, kind string) (*Decision, error) {
	limit, ok := l.limits[kind]
	if !ok || limit <= 0 {
		return &Decision{Allowed: true}, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", kind, userID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return &Decision{Allowed: true}, err
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}

	if count > int64(limit) {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return &Decision{Allowed: false, RetryAfter: ttl}, nil
	}

	return &Decision{Allowed: true, Remaining: limit - int(count)}, nil
}
