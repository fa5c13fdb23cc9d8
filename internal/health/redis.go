// Package health provides readiness checks for the optional dependencies of
// the recommendation service.
package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChecker reports whether the Redis backing the shared rate limiter
// answers PING.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// HealthCheck sends PING and expects PONG.
func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	pong, err := r.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("redis ping: unexpected reply %q", pong)
	}
	return nil
}
