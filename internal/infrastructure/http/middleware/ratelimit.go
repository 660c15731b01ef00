package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// runLimiter is a per-key in-memory token bucket, adapted from the
// teacher's SimpleLimiter for the one endpoint here worth protecting: run
// submission, which fans out to paid LLM/image-generation providers.
type runLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func newRunLimiter(r rate.Limit, burst int) *runLimiter {
	return &runLimiter{limiters: make(map[string]*rate.Limiter), rate: r, burst: burst}
}

func (l *runLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

func (l *runLimiter) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			l.limiters = make(map[string]*rate.Limiter)
			l.mu.Unlock()
		}
	}
}

// RunRateLimit throttles run-submission requests per caller (user id when
// authenticated, else remote IP), returning 429 once the bucket for that
// key is exhausted. Limiters are periodically reset rather than evicted
// individually, matching the teacher's cleanup routine.
func RunRateLimit(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	limiter := newRunLimiter(rate.Limit(requestsPerSecond), burst)
	go limiter.cleanup(context.Background(), 10*time.Minute)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if userID, ok := c.Get("user_id").(string); ok && userID != "" && userID != "anonymous" {
				key = fmt.Sprintf("user:%v", userID)
			}

			if !limiter.get(key).Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "rate_limit_exceeded",
					"message": "Too many requests. Please slow down.",
				})
			}

			return next(c)
		}
	}
}
