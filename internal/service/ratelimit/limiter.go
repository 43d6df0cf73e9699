package ratelimit

import (
	"context"
	"strconv"
	"time"

	"StockPulse/pkg/cache"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window limiter over a counter store. With a redis store the
// window is shared by every replica.
type Limiter struct {
	store  cache.Counter
	limit  int
	window time.Duration
}

func New(store cache.Counter, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow consumes one request for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	n, ttl, err := l.store.IncrWindow(ctx, "rl:"+key, l.window)
	if err != nil {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, err
	}
	d := Decision{Limit: l.limit, Remaining: l.limit - int(n)}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	d.Allowed = n <= int64(l.limit)
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}

// Middleware limits per client IP. Store errors let the request through.
func Middleware(l *Limiter, log *applogger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = applogger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			d, err := l.Allow(c.Request().Context(), ip)
			if err != nil {
				log.Warn("rate limit store unavailable", applogger.String("ip", ip), applogger.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				secs := int(d.RetryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded").
					WithParam("retry_after_seconds", secs))
			}
			return next(c)
		}
	}
}
