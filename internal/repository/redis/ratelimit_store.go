package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitStore struct {
	client *redis.Client
}

func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Hit increments the counter for key, starting a fresh window on the first
// hit. It returns the count after the increment and the time left until the
// window resets.
func (r *RateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttl, err := r.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// Counter exists without an expiry; reset the window.
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}

	return count, ttl, nil
}
