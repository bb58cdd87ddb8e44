package httpmiddleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Limiter counts hits per key in fixed windows. Get increments and
// reports the key's state in one step; *limiter.Limiter satisfies it.
type Limiter interface {
	Get(ctx context.Context, key string) (limiter.Context, error)
}

func fixedWindow(limit int, window time.Duration) limiter.Rate {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return limiter.Rate{Period: window, Limit: int64(limit)}
}

// NewMemoryLimiter allows limit hits per window for each key, counted in
// process. A key's window starts with its first hit.
func NewMemoryLimiter(limit int, window time.Duration) *limiter.Limiter {
	rate := fixedWindow(limit, window)
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "geoattend",
		CleanUpInterval: rate.Period,
	})
	return limiter.New(store, rate)
}

// NewRedisLimiter is NewMemoryLimiter with counters kept in Redis under
// prefix, so every replica shares them.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*limiter.Limiter, error) {
	if prefix == "" {
		prefix = "ratelimit"
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("redis limiter store: %w", err)
	}
	return limiter.New(store, fixedWindow(limit, window)), nil
}

// RateLimit enforces the limiter per client IP. Rejected requests get 429
// with message as the error body. A failing limiter yields 500.
func RateLimit(l Limiter, message string, logger *slog.Logger, onReject func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		state, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("rate limiter failed", "err", err, "client", ip)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		reset := strconv.Itoa(secondsUntil(state.Reset))
		c.Header("RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
		c.Header("RateLimit-Reset", reset)

		if state.Reached {
			if onReject != nil {
				onReject()
			}
			c.Header("Retry-After", reset)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// secondsUntil converts a unix reset time into whole seconds from now.
func secondsUntil(reset int64) int {
	return max(int(math.Ceil(time.Until(time.Unix(reset, 0)).Seconds())), 0)
}
