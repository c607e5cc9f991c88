package middleware

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter increments key and reports the count inside the current window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisCounter is a fixed-window counter. EXPIRE NX runs on every hit so a
// key left without a TTL by an earlier failure gets one on the next request.
type RedisCounter struct {
	Redis redisClient
}

func (r RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if err := r.Redis.ExpireNX(ctx, key, window).Err(); err != nil {
		return 0, fmt.Errorf("expire %s: %w", key, err)
	}
	return count, nil
}

type RateLimiter struct {
	Counter Counter
	Prefix  string
	Limit   int // requests
	Window  time.Duration
}

func NewRateLimiter(c Counter, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{Counter: c, Prefix: prefix, Limit: limit, Window: window}
}

func (r *RateLimiter) MiddlewareByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("%s:%s", r.Prefix, keyFunc(c))
		count, err := r.Counter.Incr(c.UserContext(), key, r.Window)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "rate limiter error"})
		}
		if count > int64(r.Limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}

// ClientIP keys requests by remote address.
func ClientIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
