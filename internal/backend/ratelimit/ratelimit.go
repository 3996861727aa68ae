// Package ratelimit throttles public form endpoints with a redis fixed window counter.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit"

// Limiter counts requests per key inside a fixed window.
type Limiter struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
	now      func() time.Time
}

func NewLimiter(client redis.Cmdable, requests int, window time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		requests: int64(requests),
		window:   window,
		now:      time.Now,
	}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Allow reports whether another request for key fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", keyPrefix, key, bucket)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry on %s: %w", redisKey, err)
		}
	}
	return count <= l.requests, nil
}

// Middleware rejects requests over the limit with 429. Redis failures let the request through.
func (l *Limiter) Middleware(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := scope + ":" + c.RealIP()
			allowed, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				slog.Warn("rateLimit: limiter unavailable", "scope", scope, "error", err)
				return next(c)
			}
			if !allowed {
				slog.Info("rateLimit: request rejected", "scope", scope, "ip", c.RealIP())
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}
