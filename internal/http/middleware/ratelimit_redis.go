package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"nexusboard/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window rate limiter. It counts in Redis with
// INCR/EXPIRE when a client is configured and in process memory otherwise.
// Redis errors fail open.
type Limiter struct {
	rc     *redis.Client
	memory *memoryWindow
}

func NewLimiter(rc *redis.Client) *Limiter {
	return &Limiter{rc: rc, memory: newMemoryWindow()}
}

// NewRedisClient pings addr and returns nil when Redis is not reachable.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory fallbacks", "addr", addr, "error", err)
		_ = rc.Close()
		return nil
	}
	return rc
}

// ByIP limits each client IP to maxRequests per window.
func (l *Limiter) ByIP(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.handler(name, maxRequests, window, func(c *gin.Context) (string, bool) {
		return c.ClientIP(), true
	})
}

// ByUser limits each authenticated user. It must run after the auth
// middleware; unauthenticated requests pass through untouched.
func (l *Limiter) ByUser(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.handler(name, maxRequests, window, func(c *gin.Context) (string, bool) {
		id := c.GetInt64(ContextUserID)
		if id == 0 {
			return "", false
		}
		return "u" + strconv.FormatInt(id, 10), true
	})
}

func (l *Limiter) handler(name string, maxRequests int, window time.Duration, ident func(*gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := ident(c)
		if !ok {
			c.Next()
			return
		}
		key := "rl:" + name + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + who

		val, err := l.incr(c.Request.Context(), key, window)
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(name).Inc()
		c.Next()
	}
}

func (l *Limiter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if l.rc == nil {
		return l.memory.incr(key, window), nil
	}
	val, err := l.rc.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		l.rc.Expire(ctx, key, window)
	}
	return val, nil
}
