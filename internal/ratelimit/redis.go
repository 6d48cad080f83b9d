package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow provides fixed-window request counting backed by Redis. It
// protects the HTTP surface when several instances share one data set; the
// per-operation cooldown semantics stay with Cooldown.
type RedisWindow struct {
	client *redis.Client
}

func NewRedisWindow(addr, password string, db int) (*RedisWindow, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisWindow{client: client}, nil
}

// Allow counts one request for id/action and reports whether the count is
// still within limit for the current window.
func (r *RedisWindow) Allow(ctx context.Context, id, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", id, action)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

func (r *RedisWindow) Close() error {
	return r.client.Close()
}
