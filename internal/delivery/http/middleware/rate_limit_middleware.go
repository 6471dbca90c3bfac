package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"shopreg/config"
	deliverycontext "shopreg/internal/delivery/context"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// RateLimitMiddleware throttles attempts per client IP within a fixed window.
type RateLimitMiddleware struct {
	limiter service.RateLimiter
	limit   int
	window  time.Duration
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a rate limit middleware. It lets every
// request through when rate limiting is not enabled.
func NewRateLimitMiddleware(limiter service.RateLimiter, cfg *config.Config, logger *slog.Logger) *RateLimitMiddleware {
	m := &RateLimitMiddleware{limiter: limiter, logger: logger}
	if cfg != nil && cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		m.limit = cfg.RateLimit.Limit
		m.window = cfg.RateLimit.Window
	}

	return m
}

// Limit counts requests under scope. Limiter failures let the request through.
func (m *RateLimitMiddleware) Limit(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if m.limit <= 0 {
			return next
		}

		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := scope + ":" + c.RealIP()

			allowed, err := m.limiter.Allow(ctx, key, m.limit, m.window)
			if err != nil {
				deliverycontext.Logger(ctx, m.logger).Warn("Rate limiter unavailable, allowing request",
					slog.String("scope", scope),
					slog.Any("error", err),
				)

				return next(c)
			}
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(m.window.Seconds())))

				return domainerrors.ErrTooManyRequests
			}

			return next(c)
		}
	}
}
