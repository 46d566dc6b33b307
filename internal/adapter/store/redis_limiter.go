package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const usageWindow = 24 * time.Hour

// RedisLimiter caps how many menu generations a client may run per day.
// Generation calls are the expensive resource here, so the budget counts
// requests, not tokens.
type RedisLimiter struct {
	client *redis.Client
	limit  int
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	val, err := r.client.Get(ctx, usageKey(clientID)).Result()
	if err == redis.Nil {
		return true, nil // no usage yet
	}
	if err != nil {
		return false, err
	}
	usage, _ := strconv.Atoi(val)
	return usage < r.limit, nil
}

func (r *RedisLimiter) Increment(ctx context.Context, clientID string) error {
	key := usageKey(clientID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return r.client.Expire(ctx, key, usageWindow).Err()
	}
	return nil
}

func usageKey(clientID string) string { return "menu_usage:" + clientID }
