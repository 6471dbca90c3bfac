// Package ratelimit provides fixed-window attempt counters for the
// credential endpoints.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"shopreg/config"
	"shopreg/internal/domain/lifecycle"
	"shopreg/internal/domain/service"
	"shopreg/internal/errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
)

const keyPrefix = "rate_limit:"

// fixedWindowScript increments the counter and starts the window on the first hit.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// counter increments a key that expires after window and returns the new count.
type counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

func (c *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := fixedWindowScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, errors.Wrap(err, "failed to increment rate limit counter")
	}

	return n, nil
}

// redisRateLimiter implements service.RateLimiter on a Redis counter.
type redisRateLimiter struct {
	counter counter
}

// NewRedisRateLimiter creates a limiter backed by client.
func NewRedisRateLimiter(client *redis.Client) service.RateLimiter {
	return &redisRateLimiter{counter: &redisCounter{client: client}}
}

// Allow records one attempt for key and reports whether the count is still within limit.
func (r *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	n, err := r.counter.Incr(ctx, keyPrefix+key, window)
	if err != nil {
		return false, err
	}

	return n <= int64(limit), nil
}

// noopRateLimiter allows everything.
type noopRateLimiter struct{}

func (noopRateLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

// Params holds dependencies for the rate limiter, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New returns the Redis limiter when rate limiting is enabled and a no-op limiter otherwise.
func New(params Params) service.RateLimiter {
	cfg := params.Config.RateLimit
	if cfg == nil || !cfg.Enabled {
		params.Logger.Info("Rate limiting disabled")

		return noopRateLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			// The limiter fails open, so an unreachable Redis is not fatal.
			if err := client.Ping(ctx).Err(); err != nil {
				params.Logger.Warn("Redis unreachable, rate limiting will fail open",
					slog.String("addr", cfg.Redis.Addr),
					slog.Any("error", err),
				)
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	params.Logger.Info("Rate limiting enabled",
		slog.String("addr", cfg.Redis.Addr),
		slog.Int("limit", cfg.Limit),
		slog.Duration("window", cfg.Window),
	)

	return NewRedisRateLimiter(client)
}
